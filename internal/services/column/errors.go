package column

import "errors"

// Column-related errors
var (
	// Validation errors
	ErrEmptyName       = errors.New("column name cannot be empty")
	ErrNameTooLong     = errors.New("column name cannot exceed 50 characters")
	ErrInvalidColumnID = errors.New("invalid column ID")
	ErrInvalidBoardID  = errors.New("invalid board ID")
	ErrInvalidPosition = errors.New("invalid position: must be >= 0")

	// Business logic errors
	ErrColumnNotFound = errors.New("column not found")
	ErrBoardNotFound  = errors.New("board not found")
	ErrForbidden      = errors.New("not authorized to modify this board")
)
