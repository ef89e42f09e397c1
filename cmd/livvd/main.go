package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nathanbarrett/livv-stack-sub000/internal/app"
	"github.com/nathanbarrett/livv-stack-sub000/internal/auth"
	"github.com/nathanbarrett/livv-stack-sub000/internal/config"
	"github.com/nathanbarrett/livv-stack-sub000/internal/database"
	"github.com/nathanbarrett/livv-stack-sub000/internal/logging"
	"github.com/nathanbarrett/livv-stack-sub000/internal/realtime"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	if err := logging.Init(); err != nil {
		slog.Error("failed to initialize logging", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.InitDB(ctx, cfg.Database.Path)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing db", "error", err)
		}
	}()

	hub := realtime.NewHub(auth.AllowAll{}, cfg.Realtime.SendBuffer)
	application := app.New(database.NewRepository(db), auth.AllowAll{}, hub)

	if err := seedDefaultBoard(ctx, application); err != nil {
		slog.Error("failed to seed default board", "error", err)
		os.Exit(1)
	}

	server := realtime.NewServer(hub, cfg.Server.Addr)

	slog.Info("livvd starting",
		"addr", cfg.Server.Addr,
		"database", cfg.Database.Path,
		"pid", os.Getpid())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	slog.Info("livvd shut down gracefully")
}

// seedDefaultBoard creates a starter board with the usual three columns on
// first run, so a fresh install has something to connect to.
func seedDefaultBoard(ctx context.Context, application *app.App) error {
	boards, err := application.Boards.ListBoards(ctx)
	if err != nil {
		return err
	}
	if len(boards) > 0 {
		return nil
	}

	b, err := application.Boards.CreateBoard(ctx, "Welcome", "Your first board")
	if err != nil {
		return err
	}

	for _, name := range []string{"Todo", "In Progress", "Done"} {
		if _, err := application.Columns.CreateColumn(ctx, b.ID, name); err != nil {
			return err
		}
	}

	slog.Info("seeded default board", "board_id", b.ID)
	return nil
}
