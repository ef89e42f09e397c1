// Package database defines repository interfaces for data access
package database

import (
	"context"

	"github.com/nathanbarrett/livv-stack-sub000/internal/models"
)

// Store defines the unified interface for all data operations needed by the
// service layer. Position writes happen only through CreateColumn/CreateTask
// (append), MoveColumn/MoveTask (reindex) and the deletes (gap healing);
// there is no raw position setter.
type Store interface {
	// Boards
	CreateBoard(ctx context.Context, name, description string) (*models.Board, error)
	GetBoardByID(ctx context.Context, boardID int) (*models.Board, error)
	GetAllBoards(ctx context.Context) ([]*models.Board, error)
	UpdateBoard(ctx context.Context, boardID int, name, description string) error
	DeleteBoard(ctx context.Context, boardID int) error

	// Columns
	CreateColumn(ctx context.Context, boardID int, name string) (*models.Column, error)
	GetColumnByID(ctx context.Context, columnID int) (*models.Column, error)
	GetColumnsByBoard(ctx context.Context, boardID int) ([]*models.Column, error)
	GetColumnCountByBoard(ctx context.Context, boardID int) (int, error)
	UpdateColumnName(ctx context.Context, columnID int, name string) error
	MoveColumn(ctx context.Context, columnID, newPosition int) (*models.Column, error)
	DeleteColumn(ctx context.Context, columnID int) error

	// Tasks
	CreateTask(ctx context.Context, columnID int, title, description string) (*models.Task, error)
	GetTaskByID(ctx context.Context, taskID int) (*models.Task, error)
	GetTasksByColumn(ctx context.Context, columnID int) ([]*models.Task, error)
	GetTaskCountByColumn(ctx context.Context, columnID int) (int, error)
	UpdateTask(ctx context.Context, taskID int, title, description string) error
	MoveTask(ctx context.Context, taskID, targetColumnID, newPosition int) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID int) error
}

// Compile-time verification that *Repository implements Store
var _ Store = (*Repository)(nil)
