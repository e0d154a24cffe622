package journal

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Journal is the operator shift log: one session row per run, one
// event row per settled transition, arbitration change, or alarm.
// Write failures are logged, never propagated; losing a journal row
// must not disturb the console.
type Journal struct {
	db        *sql.DB
	log       *slog.Logger
	SessionID string
}

// Event is one recorded shift-log entry.
type Event struct {
	Kind      string
	Detail    string
	CreatedAt time.Time
}

// Open opens (creating if needed) the journal database, applies
// migrations, and starts a new session.
func Open(path string, log *slog.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	j := &Journal{db: db, log: log, SessionID: uuid.NewString()}
	_, err = db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		j.SessionID, now().Format(time.RFC3339),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}
	return j, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	err = m.Up()
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}

// Record stores one shift-log event for the current session. Satisfies
// the coordinator's Recorder interface.
func (j *Journal) Record(kind, detail string) {
	_, err := j.db.Exec(
		`INSERT INTO events (session_id, kind, detail, created_at) VALUES (?, ?, ?, ?)`,
		j.SessionID, kind, detail, now().Format(time.RFC3339),
	)
	if err != nil {
		j.log.Error("journal write failed", "kind", kind, "err", err)
	}
}

// Events returns the current session's events of one kind, oldest
// first.
func (j *Journal) Events(kind string) ([]Event, error) {
	rows, err := j.db.Query(
		`SELECT kind, detail, created_at FROM events
		 WHERE session_id = ? AND kind = ? ORDER BY id`,
		j.SessionID, kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var ts string
		if err := rows.Scan(&e.Kind, &e.Detail, &ts); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close ends the session.
func (j *Journal) Close() error {
	return j.db.Close()
}

// now returns UTC time truncated to seconds (consistent with the
// sqlite default).
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
