package column

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

// Service defines all column-related business operations
type Service interface {
	// Read operations
	GetColumn(ctx context.Context, columnID int) (*models.Column, error)
	GetColumnsByBoard(ctx context.Context, boardID int) ([]*models.Column, error)

	// Write operations
	CreateColumn(ctx context.Context, boardID int, name string) (*models.Column, error)
	RenameColumn(ctx context.Context, columnID int, name string) error
	DeleteColumn(ctx context.Context, columnID int) error

	// MoveColumn moves a column to newPosition within its board and returns
	// the column as persisted after the reindex commits. Positions past the
	// end of the board are clamped to the last slot; a move to the column's
	// current position is a no-op and publishes nothing.
	MoveColumn(ctx context.Context, columnID, newPosition int) (*models.Column, error)
}

// service implements Service interface
type service struct {
	repo        database.Store
	authorizer  auth.Authorizer
	broadcaster *events.Broadcaster
}

// NewService creates a new column service
func NewService(repo database.Store, authorizer auth.Authorizer, broadcaster *events.Broadcaster) Service {
	return &service{
		repo:        repo,
		authorizer:  authorizer,
		broadcaster: broadcaster,
	}
}

// GetColumn retrieves a single column
func (s *service) GetColumn(ctx context.Context, columnID int) (*models.Column, error) {
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

	return col, nil
}

// GetColumnsByBoard retrieves a board's columns in position order
func (s *service) GetColumnsByBoard(ctx context.Context, boardID int) ([]*models.Column, error) {
	if boardID <= 0 {
		return nil, ErrInvalidBoardID
	}

	if err := s.authorizeView(ctx, boardID); err != nil {
		return nil, err
	}

	return s.repo.GetColumnsByBoard(ctx, boardID)
}

// CreateColumn appends a new column to the end of the board's list
func (s *service) CreateColumn(ctx context.Context, boardID int, name string) (*models.Column, error) {
	if boardID <= 0 {
		return nil, ErrInvalidBoardID
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetBoardByID(ctx, boardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	if err := s.authorizeMutate(ctx, boardID); err != nil {
		return nil, err
	}

	col, err := s.repo.CreateColumn(ctx, boardID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create column: %w", err)
	}

	s.broadcaster.Publish(col.BoardID, events.ActionCreated, events.EntityColumn, col.ID)

	return col, nil
}

// RenameColumn updates a column's name
func (s *service) RenameColumn(ctx context.Context, columnID int, name string) error {
	if columnID <= 0 {
		return ErrInvalidColumnID
	}
	if err := validateName(name); err != nil {
		return err
	}

	col, err := s.repo.GetColumnByID(ctx, columnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrColumnNotFound
		}
		return fmt.Errorf("failed to get column: %w", err)
	}

	if err := s.authorizeMutate(ctx, col.BoardID); err != nil {
		return err
	}

	if err := s.repo.UpdateColumnName(ctx, columnID, name); err != nil {
		return fmt.Errorf("failed to rename column: %w", err)
	}

	s.broadcaster.Publish(col.BoardID, events.ActionUpdated, events.EntityColumn, columnID)

	return nil
}

// DeleteColumn removes a column and everything in it
func (s *service) DeleteColumn(ctx context.Context, columnID int) error {
	if columnID <= 0 {
		return ErrInvalidColumnID
	}

	col, err := s.repo.GetColumnByID(ctx, columnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrColumnNotFound
		}
		return fmt.Errorf("failed to get column: %w", err)
	}

	if err := s.authorizeMutate(ctx, col.BoardID); err != nil {
		return err
	}

	if err := s.repo.DeleteColumn(ctx, columnID); err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}

	s.broadcaster.Publish(col.BoardID, events.ActionDeleted, events.EntityColumn, columnID)

	return nil
}

// MoveColumn moves a column to a new position within its board
func (s *service) MoveColumn(ctx context.Context, columnID, newPosition int) (*models.Column, error) {
	if columnID <= 0 {
		return nil, ErrInvalidColumnID
	}
	if newPosition < 0 {
		return nil, ErrInvalidPosition
	}

	col, err := s.repo.GetColumnByID(ctx, columnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrColumnNotFound
		}
		return nil, fmt.Errorf("failed to get column: %w", err)
	}

	if err := s.authorizeMutate(ctx, col.BoardID); err != nil {
		return nil, err
	}

	count, err := s.repo.GetColumnCountByBoard(ctx, col.BoardID)
	if err != nil {
		return nil, fmt.Errorf("failed to count columns: %w", err)
	}
	// The board already contains this column, so the last valid slot is count-1.
	if newPosition > count-1 {
		newPosition = count - 1
	}

	if newPosition == col.Position {
		return col, nil
	}

	moved, err := s.repo.MoveColumn(ctx, columnID, newPosition)
	if err != nil {
		return nil, fmt.Errorf("failed to move column: %w", err)
	}

	s.broadcaster.Publish(moved.BoardID, events.ActionMoved, events.EntityColumn, moved.ID)

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

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 50 {
		return ErrNameTooLong
	}
	return nil
}
