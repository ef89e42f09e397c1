package task

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/nathanbarrett/livv-stack-sub000/internal/auth"
	"github.com/nathanbarrett/livv-stack-sub000/internal/database"
	"github.com/nathanbarrett/livv-stack-sub000/internal/events"
	"github.com/nathanbarrett/livv-stack-sub000/internal/models"

	_ "modernc.org/sqlite"
)

// capturingTransport records every event handed to it so tests can assert
// on publish counts and payloads.
type capturingTransport struct {
	published []publishedEvent
}

type publishedEvent struct {
	topic string
	event events.Event
}

func (c *capturingTransport) Publish(topic string, event events.Event) error {
	c.published = append(c.published, publishedEvent{topic: topic, event: event})
	return nil
}

// denyAll refuses every mutation while still allowing reads.
type denyAll struct{}

func (denyAll) CanViewBoard(context.Context, auth.Principal, int) (bool, error) {
	return true, nil
}

func (denyAll) CanMutateBoard(context.Context, auth.Principal, int) (bool, error) {
	return false, nil
}

// failingStore wraps a real store but fails the move itself, simulating a
// persistence error after validation has passed.
type failingStore struct {
	database.Store
}

func (f *failingStore) MoveTask(context.Context, int, int, int) (*models.Task, error) {
	return nil, errors.New("disk full")
}

func setupService(t *testing.T) (Service, *database.Repository, *capturingTransport) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	schema := `
		CREATE TABLE boards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE columns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			board_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE
		);
		CREATE TABLE tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			column_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			position INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (column_id) REFERENCES columns(id) ON DELETE CASCADE
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	repo := database.NewRepository(db)
	transport := &capturingTransport{}
	svc := NewService(repo, auth.AllowAll{}, events.NewBroadcaster(transport))
	return svc, repo, transport
}

func seedBoard(t *testing.T, repo *database.Repository) (boardID int, columns []*models.Column) {
	t.Helper()
	ctx := context.Background()

	board, err := repo.CreateBoard(ctx, "Test Board", "")
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}
	for _, name := range []string{"Todo", "Doing", "Done"} {
		col, err := repo.CreateColumn(ctx, board.ID, name)
		if err != nil {
			t.Fatalf("Failed to create column %q: %v", name, err)
		}
		columns = append(columns, col)
	}
	return board.ID, columns
}

func seedTask(t *testing.T, repo *database.Repository, columnID int, title string) *models.Task {
	t.Helper()
	task, err := repo.CreateTask(context.Background(), columnID, title, "")
	if err != nil {
		t.Fatalf("Failed to create task %q: %v", title, err)
	}
	return task
}

func taskTitles(t *testing.T, repo *database.Repository, columnID int) []string {
	t.Helper()
	tasks, err := repo.GetTasksByColumn(context.Background(), columnID)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}
	titles := make([]string, len(tasks))
	for i, task := range tasks {
		if task.Position != i {
			t.Errorf("Task %q: expected position %d, got %d", task.Title, i, task.Position)
		}
		titles[i] = task.Title
	}
	return titles
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _, transport := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreateTaskRequest
		wantErr error
	}{
		{"empty title", CreateTaskRequest{ColumnID: 1, Title: ""}, ErrEmptyTitle},
		{"title too long", CreateTaskRequest{ColumnID: 1, Title: strings.Repeat("x", 256)}, ErrTitleTooLong},
		{"zero column id", CreateTaskRequest{ColumnID: 0, Title: "ok"}, ErrInvalidColumnID},
		{"negative column id", CreateTaskRequest{ColumnID: -1, Title: "ok"}, ErrInvalidColumnID},
		{"missing column", CreateTaskRequest{ColumnID: 42, Title: "ok"}, ErrColumnNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if len(transport.published) != 0 {
		t.Errorf("Expected no events for failed creates, got %d", len(transport.published))
	}
}

func TestCreateTaskPublishesCreated(t *testing.T) {
	svc, repo, transport := setupService(t)
	boardID, cols := seedBoard(t, repo)

	task, err := svc.CreateTask(context.Background(), CreateTaskRequest{
		ColumnID: cols[0].ID,
		Title:    "Write tests",
	})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if task.Position != 0 {
		t.Errorf("Expected position 0, got %d", task.Position)
	}

	if len(transport.published) != 1 {
		t.Fatalf("Expected exactly 1 event, got %d", len(transport.published))
	}
	got := transport.published[0]
	if got.topic != events.Topic(boardID) {
		t.Errorf("Expected topic %q, got %q", events.Topic(boardID), got.topic)
	}
	if got.event.Action != events.ActionCreated || got.event.EntityType != events.EntityTask {
		t.Errorf("Unexpected event: %+v", got.event)
	}
	if got.event.EntityID != task.ID {
		t.Errorf("Expected entity id %d, got %d", task.ID, got.event.EntityID)
	}
}

func TestMoveTaskWithinColumn(t *testing.T) {
	svc, repo, transport := setupService(t)
	boardID, cols := seedBoard(t, repo)

	seedTask(t, repo, cols[0].ID, "First")
	seedTask(t, repo, cols[0].ID, "Second")
	third := seedTask(t, repo, cols[0].ID, "Third")

	moved, err := svc.MoveTask(context.Background(), third.ID, cols[0].ID, 0)
	if err != nil {
		t.Fatalf("Failed to move task: %v", err)
	}
	if moved.Position != 0 {
		t.Errorf("Expected position 0, got %d", moved.Position)
	}

	got := taskTitles(t, repo, cols[0].ID)
	want := []string{"Third", "First", "Second"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if len(transport.published) != 1 {
		t.Fatalf("Expected exactly 1 event, got %d", len(transport.published))
	}
	event := transport.published[0].event
	if event.Action != events.ActionMoved || event.EntityType != events.EntityTask || event.EntityID != third.ID {
		t.Errorf("Unexpected event: %+v", event)
	}
	if event.BoardID != boardID {
		t.Errorf("Expected board %d, got %d", boardID, event.BoardID)
	}
}

func TestMoveTaskAcrossColumns(t *testing.T) {
	svc, repo, transport := setupService(t)
	_, cols := seedBoard(t, repo)

	taskA := seedTask(t, repo, cols[0].ID, "TaskA")
	seedTask(t, repo, cols[0].ID, "TaskB")
	seedTask(t, repo, cols[1].ID, "TaskC")
	seedTask(t, repo, cols[1].ID, "TaskD")

	moved, err := svc.MoveTask(context.Background(), taskA.ID, cols[1].ID, 1)
	if err != nil {
		t.Fatalf("Failed to move task: %v", err)
	}
	if moved.ColumnID != cols[1].ID || moved.Position != 1 {
		t.Errorf("Expected column %d position 1, got column %d position %d",
			cols[1].ID, moved.ColumnID, moved.Position)
	}

	source := taskTitles(t, repo, cols[0].ID)
	if len(source) != 1 || source[0] != "TaskB" {
		t.Errorf("Expected source [TaskB], got %v", source)
	}
	dest := taskTitles(t, repo, cols[1].ID)
	want := []string{"TaskC", "TaskA", "TaskD"}
	for i := range want {
		if dest[i] != want[i] {
			t.Errorf("Destination position %d: expected %q, got %q", i, want[i], dest[i])
		}
	}

	if len(transport.published) != 1 {
		t.Errorf("Expected exactly 1 event, got %d", len(transport.published))
	}
}

func TestMoveTaskClampsPastEnd(t *testing.T) {
	svc, repo, _ := setupService(t)
	_, cols := seedBoard(t, repo)

	task := seedTask(t, repo, cols[0].ID, "Only")
	seedTask(t, repo, cols[1].ID, "Existing")

	// Position 99 clamps to the destination's size (append).
	moved, err := svc.MoveTask(context.Background(), task.ID, cols[1].ID, 99)
	if err != nil {
		t.Fatalf("Failed to move task: %v", err)
	}
	if moved.Position != 1 {
		t.Errorf("Expected clamped position 1, got %d", moved.Position)
	}
}

func TestMoveTaskNoOpPublishesNothing(t *testing.T) {
	svc, repo, transport := setupService(t)
	_, cols := seedBoard(t, repo)

	seedTask(t, repo, cols[0].ID, "First")
	second := seedTask(t, repo, cols[0].ID, "Second")

	moved, err := svc.MoveTask(context.Background(), second.ID, cols[0].ID, 1)
	if err != nil {
		t.Fatalf("Failed no-op move: %v", err)
	}
	if moved.Position != 1 {
		t.Errorf("Expected position 1, got %d", moved.Position)
	}

	if len(transport.published) != 0 {
		t.Errorf("Expected no events for a no-op move, got %d", len(transport.published))
	}
}

func TestMoveTaskCrossBoardRejected(t *testing.T) {
	svc, repo, transport := setupService(t)
	_, cols := seedBoard(t, repo)
	ctx := context.Background()

	otherBoard, err := repo.CreateBoard(ctx, "Other Board", "")
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}
	otherColumn, err := repo.CreateColumn(ctx, otherBoard.ID, "Elsewhere")
	if err != nil {
		t.Fatalf("Failed to create column: %v", err)
	}

	task := seedTask(t, repo, cols[0].ID, "Stay home")
	seedTask(t, repo, cols[0].ID, "Neighbor")

	_, err = svc.MoveTask(ctx, task.ID, otherColumn.ID, 0)
	if !errors.Is(err, ErrCrossBoardMove) {
		t.Fatalf("Expected ErrCrossBoardMove, got %v", err)
	}

	// Nothing moved and nothing was published.
	got := taskTitles(t, repo, cols[0].ID)
	if len(got) != 2 || got[0] != "Stay home" || got[1] != "Neighbor" {
		t.Errorf("Expected source column untouched, got %v", got)
	}
	if len(transport.published) != 0 {
		t.Errorf("Expected no events for a rejected move, got %d", len(transport.published))
	}
}

func TestMoveTaskValidation(t *testing.T) {
	svc, repo, _ := setupService(t)
	_, cols := seedBoard(t, repo)
	task := seedTask(t, repo, cols[0].ID, "Real")

	tests := []struct {
		name         string
		taskID       int
		targetColumn int
		position     int
		wantErr      error
	}{
		{"zero task id", 0, cols[0].ID, 0, ErrInvalidTaskID},
		{"zero column id", task.ID, 0, 0, ErrInvalidColumnID},
		{"negative position", task.ID, cols[0].ID, -1, ErrInvalidPosition},
		{"missing task", 9999, cols[0].ID, 0, ErrTaskNotFound},
		{"missing column", task.ID, 9999, 0, ErrColumnNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MoveTask(context.Background(), tt.taskID, tt.targetColumn, tt.position)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMoveTaskForbidden(t *testing.T) {
	_, repo, transport := setupService(t)
	_, cols := seedBoard(t, repo)

	task := seedTask(t, repo, cols[0].ID, "Locked")
	seedTask(t, repo, cols[0].ID, "Other")

	svc := NewService(repo, denyAll{}, events.NewBroadcaster(transport))
	_, err := svc.MoveTask(context.Background(), task.ID, cols[0].ID, 1)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
	if len(transport.published) != 0 {
		t.Errorf("Expected no events for a forbidden move, got %d", len(transport.published))
	}
}

func TestMoveTaskPersistenceFailurePublishesNothing(t *testing.T) {
	_, repo, transport := setupService(t)
	_, cols := seedBoard(t, repo)

	task := seedTask(t, repo, cols[0].ID, "Doomed")
	seedTask(t, repo, cols[0].ID, "Other")

	svc := NewService(&failingStore{Store: repo}, auth.AllowAll{}, events.NewBroadcaster(transport))
	_, err := svc.MoveTask(context.Background(), task.ID, cols[0].ID, 1)
	if err == nil {
		t.Fatal("Expected move to fail")
	}
	if len(transport.published) != 0 {
		t.Errorf("Expected no events when the move fails, got %d", len(transport.published))
	}
}

func TestUpdateTaskPartialFields(t *testing.T) {
	svc, repo, transport := setupService(t)
	_, cols := seedBoard(t, repo)
	ctx := context.Background()

	task := seedTask(t, repo, cols[0].ID, "Original")

	newTitle := "Renamed"
	if err := svc.UpdateTask(ctx, UpdateTaskRequest{TaskID: task.ID, Title: &newTitle}); err != nil {
		t.Fatalf("Failed to update task: %v", err)
	}

	got, err := repo.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to re-read task: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Expected title %q, got %q", "Renamed", got.Title)
	}

	if len(transport.published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(transport.published))
	}
	if transport.published[0].event.Action != events.ActionUpdated {
		t.Errorf("Expected updated event, got %+v", transport.published[0].event)
	}

	// No fields set is a no-op, not an error.
	if err := svc.UpdateTask(ctx, UpdateTaskRequest{TaskID: task.ID}); err != nil {
		t.Errorf("Expected no-op update to succeed, got %v", err)
	}
	if len(transport.published) != 1 {
		t.Errorf("Expected no additional event for a no-op update, got %d", len(transport.published))
	}
}

func TestDeleteTaskPublishesDeleted(t *testing.T) {
	svc, repo, transport := setupService(t)
	_, cols := seedBoard(t, repo)

	seedTask(t, repo, cols[0].ID, "Keep")
	task := seedTask(t, repo, cols[0].ID, "Remove")
	seedTask(t, repo, cols[0].ID, "Shift down")

	if err := svc.DeleteTask(context.Background(), task.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}

	got := taskTitles(t, repo, cols[0].ID)
	if len(got) != 2 || got[0] != "Keep" || got[1] != "Shift down" {
		t.Errorf("Expected remaining tasks renumbered, got %v", got)
	}

	if len(transport.published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(transport.published))
	}
	event := transport.published[0].event
	if event.Action != events.ActionDeleted || event.EntityID != task.ID {
		t.Errorf("Unexpected event: %+v", event)
	}
}
