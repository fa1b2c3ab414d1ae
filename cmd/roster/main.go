package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/db"
	"github.com/monocle-dev/roster/internal/auth"
	"github.com/monocle-dev/roster/internal/config"
	"github.com/monocle-dev/roster/internal/handlers"
	"github.com/monocle-dev/roster/internal/router"
	"github.com/monocle-dev/roster/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("roster stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env", os.Args[1:])

	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Open(db.Config{
		Path:   cfg.DBPath,
		DSN:    cfg.DatabaseURL,
		Logger: logger,
		Debug:  cfg.SQLDebug,
	})

	if err != nil {
		return err
	}

	defer db.Close(conn)

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)

	if err != nil {
		return err
	}

	h := handlers.New(store.New(conn), issuer, logger, handlers.CookieConfig{
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
	})

	r, err := router.NewRouter(h, cfg.Origins, logger)

	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
