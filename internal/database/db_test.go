package database

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory database with the full schema
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})

	// Enable foreign key constraints
	_, err = db.ExecContext(context.Background(), "PRAGMA foreign_keys = ON")
	if err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

// createTestBoard creates a board and returns its ID
func createTestBoard(t *testing.T, repo *Repository) int {
	t.Helper()
	board, err := repo.CreateBoard(context.Background(), "Test Board", "A board for testing")
	if err != nil {
		t.Fatalf("Failed to create test board: %v", err)
	}
	return board.ID
}

// assertColumnOrder verifies a board's columns appear with the given names at
// positions 0..N-1, which also checks the dense-position invariant.
func assertColumnOrder(t *testing.T, repo *Repository, boardID int, names []string) {
	t.Helper()
	columns, err := repo.GetColumnsByBoard(context.Background(), boardID)
	if err != nil {
		t.Fatalf("Failed to get columns: %v", err)
	}
	if len(columns) != len(names) {
		t.Fatalf("Expected %d columns, got %d", len(names), len(columns))
	}
	for i, col := range columns {
		if col.Position != i {
			t.Errorf("Column %q: expected position %d, got %d", col.Name, i, col.Position)
		}
		if col.Name != names[i] {
			t.Errorf("Position %d: expected column %q, got %q", i, names[i], col.Name)
		}
	}
}

// assertTaskOrder verifies a column's tasks appear with the given titles at
// positions 0..N-1.
func assertTaskOrder(t *testing.T, repo *Repository, columnID int, titles []string) {
	t.Helper()
	tasks, err := repo.GetTasksByColumn(context.Background(), columnID)
	if err != nil {
		t.Fatalf("Failed to get tasks: %v", err)
	}
	if len(tasks) != len(titles) {
		t.Fatalf("Expected %d tasks, got %d", len(titles), len(tasks))
	}
	for i, task := range tasks {
		if task.Position != i {
			t.Errorf("Task %q: expected position %d, got %d", task.Title, i, task.Position)
		}
		if task.Title != titles[i] {
			t.Errorf("Position %d: expected task %q, got %q", i, titles[i], task.Title)
		}
	}
}
