// Package store runs the create, read, update and delete flows for users,
// departments and jobs. Each call is one unit of work in its own
// transaction. Mutations take the acting user and apply the ownership policy
// of package authz to the entity they load.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/monocle-dev/roster/db"
	"github.com/monocle-dev/roster/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("Not found")
	ErrConflict        = errors.New("Conflict")
	ErrInvalid         = errors.New("Bad request")
	ErrReferenced      = errors.New("Still referenced")
	ErrUnauthenticated = errors.New("Unauthorized")
	ErrBadCredentials  = errors.New("Invalid email or password")
)

// Error carries a caller-facing message and unwraps to one of the sentinel
// errors above.
type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string { return e.message }
func (e *Error) Unwrap() error { return e.kind }

func fail(kind error, format string, args ...any) error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func New(conn *gorm.DB) *Store {
	return &Store{db: conn, now: time.Now}
}

// WithClock replaces the time source used for default dates and
// modification stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	return &Store{db: s.db, now: now}
}

// Conn returns a request scoped handle for read-only work such as
// serialization.
func (s *Store) Conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *Store) session(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return db.Session(ctx, s.db, fn)
}

func first(tx *gorm.DB, dest any, id uint) error {
	err := tx.First(dest, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return err
}

func exists(tx *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64

	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// checkUsers makes sure every id in ids names an existing user.
func checkUsers(tx *gorm.DB, what string, ids models.IDList) error {
	if len(ids) == 0 {
		return nil
	}

	var found []uint

	if err := tx.Model(&models.User{}).Where("id IN ?", []uint(ids)).Pluck("id", &found).Error; err != nil {
		return err
	}

	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}

	for _, id := range ids {
		if !known[id] {
			return fail(ErrInvalid, "Unknown %s %d", what, id)
		}
	}

	return nil
}

// takeID reserves a caller supplied id for a new row of model.
func takeID(tx *gorm.DB, model any, id uint) error {
	taken, err := exists(tx, model, "id = ?", id)

	if err != nil {
		return err
	}

	if taken {
		return fail(ErrConflict, "Id already exists")
	}

	return nil
}

// resetIDSequence moves the postgres id sequence of table past the highest
// id, so rows inserted with an explicit id do not collide with later
// generated ones. sqlite derives the next id from the table itself.
func resetIDSequence(tx *gorm.DB, table string) *gorm.DB {
	if tx.Dialector.Name() != "postgres" {
		return tx
	}

	return tx.Exec(fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), GREATEST((SELECT MAX(id) FROM %[1]s), 1))",
		table,
	))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// DateTime accepts RFC 3339 as well as the plain date and datetime forms
// HTML inputs produce.
type DateTime struct {
	time.Time
}

func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return DateTime{t}, nil
		}
	}

	return DateTime{}, fmt.Errorf("unrecognised date %q", s)
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	var s string

	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	parsed, err := ParseDateTime(s)

	if err != nil {
		return err
	}

	*d = parsed
	return nil
}
