package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/danielhkuo/forum/cliparse"
	"github.com/danielhkuo/forum/db"
	"github.com/danielhkuo/forum/middleware"
	"github.com/danielhkuo/forum/rbac"
	"github.com/danielhkuo/forum/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Migrate before serving anything. Run one instance at a time.
	ctx := context.Background()
	version, err := db.ApplyPending(ctx, dbConn, db.Postgres, db.Migrations())
	if err != nil {
		slog.Error("schema migration failed, refusing to serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "version", version)

	conn := sqlx.NewDb(dbConn, "postgres")

	if err := rbac.NewStore(conn).BootstrapAdmin(ctx, cfg.AdminUsername); err != nil {
		slog.Error("administrator bootstrap failed", "error", err)
		os.Exit(1)
	}

	// Create router
	mux := router.NewRouter(conn, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.SecurityHeaders(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
