package models

import "time"

// Board is the top-level container; it owns an ordered list of columns.
type Board struct {
	ID          int
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
