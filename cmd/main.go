/*
Package main is the entry point for the openchat server.

It loads the configuration, initializes logging, wires the stores and the
connection registry, loads the persisted tables, starts the HTTP server,
and handles graceful shutdown: active sessions are cleared (they do not
survive a restart) and the chat history is flushed.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"openchat/internal/app/chat"
	"openchat/internal/app/session"
	"openchat/internal/app/user"
	"openchat/internal/configs"
	"openchat/internal/handler"
	"openchat/internal/pkg/logx"
	"openchat/internal/store"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("data_dir", cfg.DataDir).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	usersFile := store.NewFileStore(filepath.Join(cfg.DataDir, "users.json"))
	sessionsFile := store.NewFileStore(filepath.Join(cfg.DataDir, "active_sessions.json"))
	historyFile := store.NewFileStore(filepath.Join(cfg.DataDir, "chat_history.json"))

	users := user.NewDirectory(usersFile)
	sessions := session.NewStore(sessionsFile)
	history := chat.NewHistory(historyFile)

	users.Load()
	sessions.Load()
	history.Load()

	registry := chat.NewRegistry(history)

	deps := &handler.AppDeps{
		Config:   cfg,
		Users:    users,
		Sessions: sessions,
		Registry: registry,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("openchat server starting on http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	// sessions are per-process: wipe the table and its file so a clean
	// restart starts unauthenticated
	sessions.Clear()
	if err := sessionsFile.Remove(); err != nil {
		logx.Error(err, "Failed to remove session table file")
	}

	history.Flush()

	logx.Info("Server gracefully stopped.")
}
