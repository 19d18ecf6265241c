package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the CLI's local persistent state: the admin session token, the
// watch daemon's seen-message watermark, and the sender's private log of
// submissions. Nothing in it is ever transmitted.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the SQLite database at dbPath.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS admin_session (
		id          INTEGER PRIMARY KEY CHECK (id = 1),
		token       TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS seen_messages (
		id          TEXT PRIMARY KEY,
		first_seen  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sent_log (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		summary     TEXT,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_sent_time ON sent_log(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

// --- admin session ---

// SaveSessionToken stores the session token, replacing any previous one.
func (s *Store) SaveSessionToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_session (id, token, created_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET token = excluded.token, created_at = excluded.created_at`,
		token, time.Now(),
	)
	return err
}

// SessionToken returns the stored token, or "" when logged out.
func (s *Store) SessionToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM admin_session WHERE id = 1`).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// ClearSessionToken removes the stored session.
func (s *Store) ClearSessionToken(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_session WHERE id = 1`)
	return err
}

// --- watch watermark ---

// SeenIDs returns every message id the watch daemon has already announced.
func (s *Store) SeenIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM seen_messages`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seen[id] = true
	}
	return seen, rows.Err()
}

// MarkSeen records ids as announced. Re-marking an id is a no-op.
func (s *Store) MarkSeen(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO seen_messages (id) VALUES (?)`, id); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// --- sent log ---

// SentEntry is one locally recorded submission.
type SentEntry struct {
	ID        string
	Kind      string
	Summary   string
	CreatedAt time.Time
}

// RecordSent appends a submission to the local sent log.
func (s *Store) RecordSent(ctx context.Context, e SentEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sent_log (id, kind, summary, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Kind, e.Summary, e.CreatedAt,
	)
	return err
}

// RecentSent returns the newest entries from the sent log.
func (s *Store) RecentSent(ctx context.Context, limit int) ([]SentEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, summary, created_at FROM sent_log
		 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SentEntry
	for rows.Next() {
		var e SentEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Summary, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SentCount returns the number of locally recorded submissions.
func (s *Store) SentCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sent_log`).Scan(&n)
	return n, err
}
