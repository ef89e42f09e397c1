package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nathanbarrett/livv-stack-sub000/internal/models"
)

// TaskRepo handles all task-related database operations.
type TaskRepo struct {
	db *sql.DB
}

// CreateTask creates a new task at the end of the column's list.
func (r *TaskRepo) CreateTask(ctx context.Context, columnID int, title, description string) (*models.Task, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE column_id = ?`,
			columnID,
		).Scan(&next); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (column_id, title, description, position)
			 VALUES (?, ?, ?, ?)`,
			columnID, title, description, next,
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

	return r.GetTaskByID(ctx, int(id))
}

// GetTaskByID retrieves a task by its ID.
func (r *TaskRepo) GetTaskByID(ctx context.Context, taskID int) (*models.Task, error) {
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, column_id, title, description, position, created_at, updated_at
		 FROM tasks WHERE id = ?`,
		taskID,
	).Scan(
		&task.ID, &task.ColumnID, &task.Title,
		&task.Description, &task.Position, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetTasksByColumn retrieves all tasks for a specific column, ordered by position.
func (r *TaskRepo) GetTasksByColumn(ctx context.Context, columnID int) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, column_id, title, description, position, created_at, updated_at
		 FROM tasks
		 WHERE column_id = ?
		 ORDER BY position`,
		columnID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(
			&task.ID, &task.ColumnID, &task.Title,
			&task.Description, &task.Position, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// GetTaskCountByColumn returns the number of tasks in a specific column.
func (r *TaskRepo) GetTaskCountByColumn(ctx context.Context, columnID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE column_id = ?", columnID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateTask updates a task's title and description.
func (r *TaskRepo) UpdateTask(ctx context.Context, taskID int, title, description string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, description, taskID,
	)
	return err
}

// MoveTask moves a task to newPosition in the target column, which may be
// the column it is already in.
//
// Within one column the shift mirrors ColumnRepo.MoveColumn. Across columns
// the tasks after the old slot close the gap (position - 1) while the tasks
// at and after the new slot make room (position + 1); the two ranges touch
// disjoint rows, so their order is immaterial as long as both commit with
// the final placement write.
func (r *TaskRepo) MoveTask(ctx context.Context, taskID, targetColumnID, newPosition int) (*models.Task, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var oldColumnID, oldPosition int
		err := tx.QueryRowContext(ctx,
			`SELECT column_id, position FROM tasks WHERE id = ?`,
			taskID,
		).Scan(&oldColumnID, &oldPosition)
		if err != nil {
			return fmt.Errorf("reading task %d: %w", taskID, err)
		}

		if oldColumnID == targetColumnID {
			switch {
			case newPosition == oldPosition:
				return nil

			case newPosition > oldPosition:
				_, err = tx.ExecContext(ctx,
					`UPDATE tasks
					 SET position = position - 1, updated_at = CURRENT_TIMESTAMP
					 WHERE column_id = ? AND position > ? AND position <= ?`,
					oldColumnID, oldPosition, newPosition,
				)

			default:
				_, err = tx.ExecContext(ctx,
					`UPDATE tasks
					 SET position = position + 1, updated_at = CURRENT_TIMESTAMP
					 WHERE column_id = ? AND position >= ? AND position < ?`,
					oldColumnID, newPosition, oldPosition,
				)
			}
			if err != nil {
				return err
			}
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE tasks
				 SET position = position - 1, updated_at = CURRENT_TIMESTAMP
				 WHERE column_id = ? AND position > ?`,
				oldColumnID, oldPosition,
			)
			if err != nil {
				return err
			}

			_, err = tx.ExecContext(ctx,
				`UPDATE tasks
				 SET position = position + 1, updated_at = CURRENT_TIMESTAMP
				 WHERE column_id = ? AND position >= ?`,
				targetColumnID, newPosition,
			)
			if err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE tasks
			 SET column_id = ?, position = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			targetColumnID, newPosition, taskID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.GetTaskByID(ctx, taskID)
}

// DeleteTask removes a task and renumbers the tasks after it in its column.
func (r *TaskRepo) DeleteTask(ctx context.Context, taskID int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var columnID, position int
		err := tx.QueryRowContext(ctx,
			`SELECT column_id, position FROM tasks WHERE id = ?`,
			taskID,
		).Scan(&columnID, &position)
		if err != nil {
			return fmt.Errorf("reading task %d: %w", taskID, err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM tasks WHERE id = ?", taskID,
		); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE tasks
			 SET position = position - 1, updated_at = CURRENT_TIMESTAMP
			 WHERE column_id = ? AND position > ?`,
			columnID, position,
		)
		return err
	})
}
