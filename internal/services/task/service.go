package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nathanbarrett/livv-stack-sub000/internal/auth"
	"github.com/nathanbarrett/livv-stack-sub000/internal/database"
	"github.com/nathanbarrett/livv-stack-sub000/internal/events"
	"github.com/nathanbarrett/livv-stack-sub000/internal/models"
)

// Service defines all task-related business operations
type Service interface {
	// Read operations
	GetTask(ctx context.Context, taskID int) (*models.Task, error)
	GetTasksByColumn(ctx context.Context, columnID int) ([]*models.Task, error)

	// Write operations
	CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) error
	DeleteTask(ctx context.Context, taskID int) error

	// MoveTask moves a task to newPosition in the target column, which may
	// be the task's current column. The target must belong to the task's
	// board. Positions past the end of the target are clamped (append); a
	// same-column move to the current position is a no-op and publishes
	// nothing. Returns the task as persisted after the reindex commits.
	MoveTask(ctx context.Context, taskID, targetColumnID, newPosition int) (*models.Task, error)
}

// CreateTaskRequest encapsulates all data needed to create a task
type CreateTaskRequest struct {
	ColumnID    int
	Title       string
	Description string
}

// UpdateTaskRequest encapsulates all data needed to update a task.
// Fields with pointers are optional - nil means don't update.
type UpdateTaskRequest struct {
	TaskID      int
	Title       *string
	Description *string
}

// service implements Service interface
type service struct {
	repo        database.Store
	authorizer  auth.Authorizer
	broadcaster *events.Broadcaster
}

// NewService creates a new task service
func NewService(repo database.Store, authorizer auth.Authorizer, broadcaster *events.Broadcaster) Service {
	return &service{
		repo:        repo,
		authorizer:  authorizer,
		broadcaster: broadcaster,
	}
}

// GetTask retrieves a single task
func (s *service) GetTask(ctx context.Context, taskID int) (*models.Task, error) {
	if taskID <= 0 {
		return nil, ErrInvalidTaskID
	}

	t, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	col, err := s.repo.GetColumnByID(ctx, t.ColumnID)
	if err != nil {
		return nil, fmt.Errorf("failed to get column: %w", err)
	}
	if err := s.authorizeView(ctx, col.BoardID); err != nil {
		return nil, err
	}

	return t, nil
}

// GetTasksByColumn retrieves a column's tasks in position order
func (s *service) GetTasksByColumn(ctx context.Context, columnID int) ([]*models.Task, error) {
	if columnID <= 0 {
		return nil, ErrInvalidColumnID
	}

	col, err := s.repo.GetColumnByID(ctx, columnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrColumnNotFound
		}
		return nil, fmt.Errorf("failed to get column: %w", err)
	}
	if err := s.authorizeView(ctx, col.BoardID); err != nil {
		return nil, err
	}

	return s.repo.GetTasksByColumn(ctx, columnID)
}

// CreateTask appends a new task to the end of its column
func (s *service) CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if req.ColumnID <= 0 {
		return nil, ErrInvalidColumnID
	}

	col, err := s.repo.GetColumnByID(ctx, req.ColumnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrColumnNotFound
		}
		return nil, fmt.Errorf("failed to get column: %w", err)
	}

	if err := s.authorizeMutate(ctx, col.BoardID); err != nil {
		return nil, err
	}

	t, err := s.repo.CreateTask(ctx, req.ColumnID, req.Title, req.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.broadcaster.Publish(col.BoardID, events.ActionCreated, events.EntityTask, t.ID)

	return t, nil
}

// UpdateTask updates a task's title and/or description
func (s *service) UpdateTask(ctx context.Context, req UpdateTaskRequest) error {
	if req.TaskID <= 0 {
		return ErrInvalidTaskID
	}
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return err
		}
	}
	if req.Title == nil && req.Description == nil {
		return nil
	}

	t, err := s.repo.GetTaskByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to get task: %w", err)
	}

	col, err := s.repo.GetColumnByID(ctx, t.ColumnID)
	if err != nil {
		return fmt.Errorf("failed to get column: %w", err)
	}
	if err := s.authorizeMutate(ctx, col.BoardID); err != nil {
		return err
	}

	title := t.Title
	if req.Title != nil {
		title = *req.Title
	}
	description := t.Description
	if req.Description != nil {
		description = *req.Description
	}

	if err := s.repo.UpdateTask(ctx, req.TaskID, title, description); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	s.broadcaster.Publish(col.BoardID, events.ActionUpdated, events.EntityTask, req.TaskID)

	return nil
}

// DeleteTask removes a task and renumbers its column
func (s *service) DeleteTask(ctx context.Context, taskID int) error {
	if taskID <= 0 {
		return ErrInvalidTaskID
	}

	t, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to get task: %w", err)
	}

	col, err := s.repo.GetColumnByID(ctx, t.ColumnID)
	if err != nil {
		return fmt.Errorf("failed to get column: %w", err)
	}
	if err := s.authorizeMutate(ctx, col.BoardID); err != nil {
		return err
	}

	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.broadcaster.Publish(col.BoardID, events.ActionDeleted, events.EntityTask, taskID)

	return nil
}

// MoveTask moves a task within its column or to another column on the same board
func (s *service) MoveTask(ctx context.Context, taskID, targetColumnID, newPosition int) (*models.Task, error) {
	if taskID <= 0 {
		return nil, ErrInvalidTaskID
	}
	if targetColumnID <= 0 {
		return nil, ErrInvalidColumnID
	}
	if newPosition < 0 {
		return nil, ErrInvalidPosition
	}

	t, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	sourceColumn, err := s.repo.GetColumnByID(ctx, t.ColumnID)
	if err != nil {
		return nil, fmt.Errorf("failed to get source column: %w", err)
	}

	targetColumn := sourceColumn
	if targetColumnID != sourceColumn.ID {
		targetColumn, err = s.repo.GetColumnByID(ctx, targetColumnID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrColumnNotFound
			}
			return nil, fmt.Errorf("failed to get target column: %w", err)
		}
	}

	if targetColumn.BoardID != sourceColumn.BoardID {
		return nil, fmt.Errorf("%w: task %d is on board %d, column %d is on board %d",
			ErrCrossBoardMove, taskID, sourceColumn.BoardID, targetColumnID, targetColumn.BoardID)
	}

	if err := s.authorizeMutate(ctx, sourceColumn.BoardID); err != nil {
		return nil, err
	}

	count, err := s.repo.GetTaskCountByColumn(ctx, targetColumnID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	// Within the current column the last valid slot is count-1 (the task is
	// already one of the count); moving into another column may append at
	// position count.
	maxPosition := count
	if targetColumnID == t.ColumnID {
		maxPosition = count - 1
	}
	if newPosition > maxPosition {
		newPosition = maxPosition
	}

	if targetColumnID == t.ColumnID && newPosition == t.Position {
		return t, nil
	}

	moved, err := s.repo.MoveTask(ctx, taskID, targetColumnID, newPosition)
	if err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}

	s.broadcaster.Publish(targetColumn.BoardID, events.ActionMoved, events.EntityTask, moved.ID)

	return moved, nil
}

func (s *service) authorizeView(ctx context.Context, boardID int) error {
	if s.authorizer == nil {
		return nil
	}
	ok, err := s.authorizer.CanViewBoard(ctx, auth.PrincipalFromContext(ctx), boardID)
	if err != nil {
		return fmt.Errorf("authorization check failed: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *service) authorizeMutate(ctx context.Context, boardID int) error {
	if s.authorizer == nil {
		return nil
	}
	ok, err := s.authorizer.CanMutateBoard(ctx, auth.PrincipalFromContext(ctx), boardID)
	if err != nil {
		return fmt.Errorf("authorization check failed: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > 255 {
		return ErrTitleTooLong
	}
	return nil
}
