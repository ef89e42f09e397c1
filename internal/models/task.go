package models

import "time"

// Task represents a single task on the kanban board. A task belongs to
// exactly one column at a time; within that column it is ranked by Position,
// which follows the same dense zero-based contract as Column.Position.
type Task struct {
	ID          int
	ColumnID    int
	Title       string
	Description string
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
