package board

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

// Service defines all board-related business operations
type Service interface {
	CreateBoard(ctx context.Context, name, description string) (*models.Board, error)
	GetBoard(ctx context.Context, boardID int) (*models.Board, error)
	ListBoards(ctx context.Context) ([]*models.Board, error)
	UpdateBoard(ctx context.Context, boardID int, name, description string) error
	DeleteBoard(ctx context.Context, boardID int) error
}

// service implements Service interface
type service struct {
	repo        database.Store
	authorizer  auth.Authorizer
	broadcaster *events.Broadcaster
}

// NewService creates a new board service
func NewService(repo database.Store, authorizer auth.Authorizer, broadcaster *events.Broadcaster) Service {
	return &service{
		repo:        repo,
		authorizer:  authorizer,
		broadcaster: broadcaster,
	}
}

// CreateBoard creates a new, empty board
func (s *service) CreateBoard(ctx context.Context, name, description string) (*models.Board, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	b, err := s.repo.CreateBoard(ctx, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	s.broadcaster.Publish(b.ID, events.ActionCreated, events.EntityBoard, b.ID)

	return b, nil
}

// GetBoard retrieves a board
func (s *service) GetBoard(ctx context.Context, boardID int) (*models.Board, error) {
	if boardID <= 0 {
		return nil, ErrInvalidBoardID
	}

	if err := s.authorizeView(ctx, boardID); err != nil {
		return nil, err
	}

	b, err := s.repo.GetBoardByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	return b, nil
}

// ListBoards retrieves all boards
func (s *service) ListBoards(ctx context.Context) ([]*models.Board, error) {
	return s.repo.GetAllBoards(ctx)
}

// UpdateBoard updates a board's name and description
func (s *service) UpdateBoard(ctx context.Context, boardID int, name, description string) error {
	if boardID <= 0 {
		return ErrInvalidBoardID
	}
	if err := validateName(name); err != nil {
		return err
	}

	if _, err := s.repo.GetBoardByID(ctx, boardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBoardNotFound
		}
		return fmt.Errorf("failed to get board: %w", err)
	}

	if err := s.authorizeMutate(ctx, boardID); err != nil {
		return err
	}

	if err := s.repo.UpdateBoard(ctx, boardID, name, description); err != nil {
		return fmt.Errorf("failed to update board: %w", err)
	}

	s.broadcaster.Publish(boardID, events.ActionUpdated, events.EntityBoard, boardID)

	return nil
}

// DeleteBoard removes a board with its columns and tasks
func (s *service) DeleteBoard(ctx context.Context, boardID int) error {
	if boardID <= 0 {
		return ErrInvalidBoardID
	}

	if _, err := s.repo.GetBoardByID(ctx, boardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBoardNotFound
		}
		return fmt.Errorf("failed to get board: %w", err)
	}

	if err := s.authorizeMutate(ctx, boardID); err != nil {
		return err
	}

	if err := s.repo.DeleteBoard(ctx, boardID); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	s.broadcaster.Publish(boardID, events.ActionDeleted, events.EntityBoard, boardID)

	return nil
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
	if len(name) > 100 {
		return ErrNameTooLong
	}
	return nil
}
