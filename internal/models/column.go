package models

import "time"

// Column represents a kanban board column (e.g., "Todo", "In Progress", "Done").
// Columns within a board are ranked by Position, a dense zero-based integer:
// a board with N columns holds positions {0..N-1} with no gaps or duplicates.
// Position is assigned on creation (append to end) and changes only through
// the move operations on the column repository.
type Column struct {
	ID        int
	BoardID   int
	Name      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
