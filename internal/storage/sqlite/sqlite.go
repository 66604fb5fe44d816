// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// The JSON file backend rewrites the whole collection on every change.
// SQLite keeps the same single-file deployment but updates one row at a
// time, and the UNIQUE constraint on phone makes "one appointment per
// phone" a guarantee of the database rather than of our lookup code.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/appointments-api/internal/config"
	"github.com/aanand-mishra/appointments-api/internal/storage"
	"github.com/aanand-mishra/appointments-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

const (
	// id preserves insertion order for List; phone is the lookup key.
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS appointments (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			name      TEXT NOT NULL,
			email     TEXT NOT NULL,
			phone     TEXT NOT NULL UNIQUE,
			service   TEXT NOT NULL,
			appt_time TEXT NOT NULL,
			appt_date TEXT NOT NULL,
			notes     TEXT NOT NULL DEFAULT ''
		)`

	selectColumns = `name, email, phone, service, appt_time, appt_date, notes`

	getByPhoneSQL = `SELECT id, ` + selectColumns + ` FROM appointments WHERE phone = ? LIMIT 1`
	listSQL       = `SELECT id, ` + selectColumns + ` FROM appointments ORDER BY id`
	insertSQL     = `INSERT INTO appointments (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	updateSQL     = `UPDATE appointments
		SET name = ?, email = ?, service = ?, appt_time = ?, appt_date = ?, notes = ?
		WHERE id = ?`
	deleteSQL = `DELETE FROM appointments WHERE id = ?`
)

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// New opens the SQLite database at cfg.StoragePath, creates the
// appointments table if it does not already exist, and returns a
// ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite.New: create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// A single connection serialises every transaction, so each
	// lookup → write sequence runs without interleaving.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

func scanAppointment(row scanner) (int64, types.Appointment, error) {
	var (
		id int64
		a  types.Appointment
	)
	err := row.Scan(&id, &a.Name, &a.Email, &a.Phone, &a.Service, &a.Time, &a.Date, &a.Notes)
	return id, a, err
}

// findByPhone returns the row id and record for phone, or
// storage.ErrNotFound.
func findByPhone(q querier, phone string) (int64, types.Appointment, error) {
	id, a, err := scanAppointment(q.QueryRow(getByPhoneSQL, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, types.Appointment{}, storage.ErrNotFound
	}
	if err != nil {
		return 0, types.Appointment{}, fmt.Errorf("scan: %w", err)
	}
	return id, a, nil
}

// withTx runs fn inside a transaction, committing on success.
func (s *SQLite) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.Db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Upsert replaces the row with the same phone in place (keeping its id, and
// therefore its position in List) or inserts a new one.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Upsert(a types.Appointment) (bool, error) {
	inserted := false

	err := s.withTx(func(tx *sql.Tx) error {
		id, _, err := findByPhone(tx, a.Phone)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			inserted = true
			_, err = tx.Exec(insertSQL, a.Name, a.Email, a.Phone, a.Service, a.Time, a.Date, a.Notes)
		case err == nil:
			_, err = tx.Exec(updateSQL, a.Name, a.Email, a.Service, a.Time, a.Date, a.Notes, id)
		}
		return err
	})
	if err != nil {
		return false, fmt.Errorf("Upsert: %w", err)
	}

	return inserted, nil
}

// Patch applies only the non-empty fields of patch.
func (s *SQLite) Patch(phone string, patch types.AppointmentPatch) (types.Appointment, error) {
	var updated types.Appointment

	err := s.withTx(func(tx *sql.Tx) error {
		id, a, err := findByPhone(tx, phone)
		if err != nil {
			return err
		}

		patch.Apply(&a)
		if _, err := tx.Exec(updateSQL, a.Name, a.Email, a.Service, a.Time, a.Date, a.Notes, id); err != nil {
			return fmt.Errorf("exec: %w", err)
		}

		updated = a
		return nil
	})
	if err != nil {
		return types.Appointment{}, fmt.Errorf("Patch %q: %w", phone, err)
	}

	return updated, nil
}

func (s *SQLite) Remove(phone string) (types.Appointment, error) {
	var removed types.Appointment

	err := s.withTx(func(tx *sql.Tx) error {
		id, a, err := findByPhone(tx, phone)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(deleteSQL, id); err != nil {
			return fmt.Errorf("exec: %w", err)
		}

		removed = a
		return nil
	})
	if err != nil {
		return types.Appointment{}, fmt.Errorf("Remove %q: %w", phone, err)
	}

	return removed, nil
}

func (s *SQLite) Get(phone string) (types.Appointment, error) {
	_, a, err := findByPhone(s.Db, phone)
	if err != nil {
		return types.Appointment{}, fmt.Errorf("Get %q: %w", phone, err)
	}
	return a, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// List returns all rows in insertion order. Always defer rows.Close() to
// release the connection, and check rows.Err() after the loop.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) List() ([]types.Appointment, error) {
	rows, err := s.Db.Query(listSQL)
	if err != nil {
		return nil, fmt.Errorf("List: query: %w", err)
	}
	defer rows.Close()

	appointments := make([]types.Appointment, 0)
	for rows.Next() {
		_, a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan row: %w", err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows iteration: %w", err)
	}

	return appointments, nil
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}

var _ storage.Storage = (*SQLite)(nil)
