// Package app wires the board core together: repositories, authorization,
// the broadcaster, and the services that callers (HTTP controllers, CLIs)
// consume.
package app

import (
	"github.com/nathanbarrett/livv-stack-sub000/internal/auth"
	"github.com/nathanbarrett/livv-stack-sub000/internal/database"
	"github.com/nathanbarrett/livv-stack-sub000/internal/events"
	boardservice "github.com/nathanbarrett/livv-stack-sub000/internal/services/board"
	columnservice "github.com/nathanbarrett/livv-stack-sub000/internal/services/column"
	taskservice "github.com/nathanbarrett/livv-stack-sub000/internal/services/task"
)

// App holds all application services and provides dependency injection.
type App struct {
	repo        database.Store
	broadcaster *events.Broadcaster

	// Service layer (business logic)
	Boards  boardservice.Service
	Columns columnservice.Service
	Tasks   taskservice.Service
}

// New creates a new App with all services initialized. A nil transport
// disables broadcasting; mutations still work, subscribers just hear
// nothing.
func New(repo database.Store, authorizer auth.Authorizer, transport events.Publisher) *App {
	var broadcaster *events.Broadcaster
	if transport != nil {
		broadcaster = events.NewBroadcaster(transport)
	}

	return &App{
		repo:        repo,
		broadcaster: broadcaster,
		Boards:      boardservice.NewService(repo, authorizer, broadcaster),
		Columns:     columnservice.NewService(repo, authorizer, broadcaster),
		Tasks:       taskservice.NewService(repo, authorizer, broadcaster),
	}
}

// Repo returns the underlying repository for direct database access.
func (a *App) Repo() database.Store {
	return a.repo
}
