// Package state persists sync bookkeeping in a local SQLite database: the
// cached auth token, the manual start-row override, and a history of runs.
// The database lives next to the inventory file and survives restarts, which
// is what makes interrupted runs resumable.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/motorlot/lotsync/pkg/errors"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	processed   INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	error       TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

const (
	keyToken          = "token"
	keyManualStartRow = "manual_start_row"
)

// Run is one recorded sync run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Failed     int
	Error      string
}

// Store is the SQLite-backed state store. Safe for concurrent use; SQLite
// serializes writers internally.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getKV(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) setKV(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *Store) deleteKV(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// LoadToken implements wordpress.TokenStore. An empty store returns a zero
// token, which the client treats as "acquire a new one".
func (s *Store) LoadToken() (wordpress.Token, error) {
	raw, ok, err := s.getKV(keyToken)
	if err != nil || !ok {
		return wordpress.Token{}, err
	}
	var token wordpress.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		// A corrupt cache entry is discarded, not fatal.
		return wordpress.Token{}, nil
	}
	return token, nil
}

// SaveToken implements wordpress.TokenStore.
func (s *Store) SaveToken(token wordpress.Token) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return s.setKV(keyToken, string(raw))
}

// ManualStartRow returns the operator-set start-row override, or 0 when
// none is set.
func (s *Store) ManualStartRow() (int, error) {
	raw, ok, err := s.getKV(keyManualStartRow)
	if err != nil || !ok {
		return 0, err
	}
	row, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("corrupt manual start row %q: %w", raw, err)
	}
	return row, nil
}

// SetManualStartRow records a start-row override for the next run.
func (s *Store) SetManualStartRow(row int) error {
	if row < 2 {
		return errors.NewValidationError("row", row, "start row must be 2 or greater (row 1 is the header)")
	}
	return s.setKV(keyManualStartRow, strconv.Itoa(row))
}

// ClearManualStartRow removes the override so the next run starts from the
// top.
func (s *Store) ClearManualStartRow() error {
	return s.deleteKV(keyManualStartRow)
}

// BeginRun records the start of a sync run.
func (s *Store) BeginRun(ctx context.Context, id string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`, id, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a sync run.
func (s *Store) FinishRun(ctx context.Context, id string, processed, failed int, runErr error) error {
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, processed = ?, failed = ?, error = ? WHERE id = ?`,
		time.Now().UTC(), processed, failed, errText, id)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// LastRun returns the most recently started run, or nil when no run has
// been recorded yet.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	var (
		run      Run
		finished sql.NullTime
		errText  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, processed, failed, error
		 FROM runs ORDER BY started_at DESC LIMIT 1`).
		Scan(&run.ID, &run.StartedAt, &finished, &run.Processed, &run.Failed, &errText)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last run: %w", err)
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	if errText.Valid {
		run.Error = errText.String
	}
	return &run, nil
}
