package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nathanbarrett/livv-stack-sub000/internal/models"
)

// ColumnRepo handles all column-related database operations, including the
// position reindex that keeps a board's columns densely numbered.
type ColumnRepo struct {
	db *sql.DB
}

// CreateColumn creates a new column at the end of the board's list. The
// position read and the insert share a transaction so two concurrent creates
// cannot claim the same slot.
func (r *ColumnRepo) CreateColumn(ctx context.Context, boardID int, name string) (*models.Column, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position) + 1, 0) FROM columns WHERE board_id = ?`,
			boardID,
		).Scan(&next); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO columns (board_id, name, position) VALUES (?, ?, ?)`,
			boardID, name, next,
		)
		if err != nil {
			return err
		}

		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.GetColumnByID(ctx, int(id))
}

// GetColumnByID retrieves a column by its ID.
func (r *ColumnRepo) GetColumnByID(ctx context.Context, columnID int) (*models.Column, error) {
	column := &models.Column{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, board_id, name, position, created_at, updated_at
		 FROM columns WHERE id = ?`,
		columnID,
	).Scan(
		&column.ID, &column.BoardID, &column.Name,
		&column.Position, &column.CreatedAt, &column.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return column, nil
}

// GetColumnsByBoard retrieves all columns for a board, ordered by position.
func (r *ColumnRepo) GetColumnsByBoard(ctx context.Context, boardID int) ([]*models.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, board_id, name, position, created_at, updated_at
		 FROM columns
		 WHERE board_id = ?
		 ORDER BY position`,
		boardID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []*models.Column
	for rows.Next() {
		column := &models.Column{}
		if err := rows.Scan(
			&column.ID, &column.BoardID, &column.Name,
			&column.Position, &column.CreatedAt, &column.UpdatedAt,
		); err != nil {
			return nil, err
		}
		columns = append(columns, column)
	}

	return columns, rows.Err()
}

// GetColumnCountByBoard returns the number of columns on a board.
func (r *ColumnRepo) GetColumnCountByBoard(ctx context.Context, boardID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM columns WHERE board_id = ?", boardID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateColumnName updates the name of an existing column.
func (r *ColumnRepo) UpdateColumnName(ctx context.Context, columnID int, name string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE columns
		 SET name = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, columnID,
	)
	return err
}

// MoveColumn moves a column to newPosition within its board, shifting the
// columns in between so the positions stay contiguous. Moving later shifts
// the siblings in (oldPosition, newPosition] back by one; moving earlier
// shifts those in [newPosition, oldPosition) forward by one. The moved
// column sits outside both ranges and is written explicitly at the end.
//
// All writes share one transaction; the returned column is re-read after
// commit so the caller gets the authoritative persisted state.
func (r *ColumnRepo) MoveColumn(ctx context.Context, columnID, newPosition int) (*models.Column, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var boardID, oldPosition int
		err := tx.QueryRowContext(ctx,
			`SELECT board_id, position FROM columns WHERE id = ?`,
			columnID,
		).Scan(&boardID, &oldPosition)
		if err != nil {
			return fmt.Errorf("reading column %d: %w", columnID, err)
		}

		switch {
		case newPosition == oldPosition:
			return nil

		case newPosition > oldPosition:
			_, err = tx.ExecContext(ctx,
				`UPDATE columns
				 SET position = position - 1, updated_at = CURRENT_TIMESTAMP
				 WHERE board_id = ? AND position > ? AND position <= ?`,
				boardID, oldPosition, newPosition,
			)

		default:
			_, err = tx.ExecContext(ctx,
				`UPDATE columns
				 SET position = position + 1, updated_at = CURRENT_TIMESTAMP
				 WHERE board_id = ? AND position >= ? AND position < ?`,
				boardID, newPosition, oldPosition,
			)
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE columns
			 SET position = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			newPosition, columnID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.GetColumnByID(ctx, columnID)
}

// DeleteColumn removes a column and renumbers the columns after it so the
// board keeps a dense position sequence. Tasks in the column are removed by
// the CASCADE foreign key.
func (r *ColumnRepo) DeleteColumn(ctx context.Context, columnID int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var boardID, position int
		err := tx.QueryRowContext(ctx,
			`SELECT board_id, position FROM columns WHERE id = ?`,
			columnID,
		).Scan(&boardID, &position)
		if err != nil {
			return fmt.Errorf("reading column %d: %w", columnID, err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM columns WHERE id = ?", columnID,
		); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE columns
			 SET position = position - 1, updated_at = CURRENT_TIMESTAMP
			 WHERE board_id = ? AND position > ?`,
			boardID, position,
		)
		return err
	})
}
