// Command roster-admin changes user roles directly in the database.
//
//	roster-admin --email scott@mars.org --role admin
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/monocle-dev/roster/db"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "roster-admin: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("roster-admin", pflag.ContinueOnError)
	dbPath := flags.String("db", envOr("DB_PATH", "db/roster.sqlite"), "path of the sqlite database file")
	dsn := flags.String("database-url", os.Getenv("DATABASE_URL"), "postgres DSN, replaces --db when set")
	email := flags.String("email", "", "email of the user to change")
	role := flags.String("role", "admin", "role to assign: member or admin")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	conn, err := db.Open(db.Config{Path: *dbPath, DSN: *dsn, Logger: logger})
	if err != nil {
		return err
	}
	defer db.Close(conn)

	user, err := store.New(conn).SetRole(context.Background(), *email, *role)
	if err != nil {
		return fmt.Errorf("%s: %w", *email, err)
	}

	fmt.Printf("%s (%s) is now %s\n", user.FullName(), user.Email, user.Role)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
