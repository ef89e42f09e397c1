package task

import "errors"

// Task-related errors
var (
	// Validation errors
	ErrEmptyTitle      = errors.New("task title cannot be empty")
	ErrTitleTooLong    = errors.New("task title cannot exceed 255 characters")
	ErrInvalidTaskID   = errors.New("invalid task ID")
	ErrInvalidColumnID = errors.New("invalid column ID")
	ErrInvalidPosition = errors.New("invalid position: must be >= 0")

	// Business logic errors
	ErrTaskNotFound   = errors.New("task not found")
	ErrColumnNotFound = errors.New("column not found")
	ErrForbidden      = errors.New("not authorized to modify this board")

	// ErrCrossBoardMove indicates an attempt to move a task into a column
	// that belongs to a different board. Tasks only move between columns of
	// one board.
	ErrCrossBoardMove = errors.New("cannot move task to a column on a different board")
)
