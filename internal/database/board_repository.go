package database

import (
	"context"
	"database/sql"

	"github.com/nathanbarrett/livv-stack-sub000/internal/models"
)

// BoardRepo handles all board-related database operations.
type BoardRepo struct {
	db *sql.DB
}

// CreateBoard creates a new board in the database.
func (r *BoardRepo) CreateBoard(ctx context.Context, name, description string) (*models.Board, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO boards (name, description) VALUES (?, ?)`,
		name, description,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	// Retrieve the created board to get timestamps
	return r.GetBoardByID(ctx, int(id))
}

// GetBoardByID retrieves a board by its ID.
func (r *BoardRepo) GetBoardByID(ctx context.Context, boardID int) (*models.Board, error) {
	board := &models.Board{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at
		 FROM boards WHERE id = ?`,
		boardID,
	).Scan(&board.ID, &board.Name, &board.Description, &board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return board, nil
}

// GetAllBoards retrieves all boards ordered by creation time.
func (r *BoardRepo) GetAllBoards(ctx context.Context) ([]*models.Board, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at
		 FROM boards
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []*models.Board
	for rows.Next() {
		board := &models.Board{}
		if err := rows.Scan(
			&board.ID, &board.Name, &board.Description,
			&board.CreatedAt, &board.UpdatedAt,
		); err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}

	return boards, rows.Err()
}

// UpdateBoard updates a board's name and description.
func (r *BoardRepo) UpdateBoard(ctx context.Context, boardID int, name, description string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE boards
		 SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, description, boardID,
	)
	return err
}

// DeleteBoard removes a board. Its columns and their tasks go with it via
// the CASCADE foreign keys.
func (r *BoardRepo) DeleteBoard(ctx context.Context, boardID int) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM boards WHERE id = ?", boardID)
	return err
}
