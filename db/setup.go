package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/monocle-dev/roster/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config selects the relational store. Path is a sqlite file; DSN, when set,
// points at a postgres server instead.
type Config struct {
	Path   string
	DSN    string
	Logger *slog.Logger
	// Debug logs every SQL statement.
	Debug bool
}

// Open connects to the configured store and creates missing tables. The
// returned handle is meant to live for the whole process and be passed to
// whoever needs it.
func Open(cfg Config) (*gorm.DB, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	dialector, err := dialect(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := MigrateDatabase(conn); err != nil {
		Close(conn)
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log.Info("database ready", "driver", conn.Dialector.Name())
	return conn, nil
}

func dialect(cfg Config) (gorm.Dialector, error) {
	if cfg.DSN != "" {
		return postgres.Open(cfg.DSN), nil
	}

	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("database path is empty")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := "file:" + cfg.Path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	return sqlite.Open(dsn), nil
}

func MigrateDatabase(conn *gorm.DB) error {
	// Parents before children so foreign keys resolve.
	models := []interface{}{
		&models.User{},
		&models.Department{},
		&models.DepartmentMember{},
		&models.Job{},
		&models.JobCollaborator{},
	}

	migrator := conn.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := conn.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// Session runs fn as one unit of work. The transaction is committed when fn
// returns nil and rolled back otherwise.
func Session(ctx context.Context, conn *gorm.DB, fn func(tx *gorm.DB) error) error {
	return conn.WithContext(ctx).Transaction(fn)
}

func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
