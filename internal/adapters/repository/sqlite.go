package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/pkg/metrics"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists sessions in the sessions table of a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path and runs
// migrations. Use ":memory:" for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serialises writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path}
	if err := s.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// DB returns the underlying database connection.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) runMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			total_crossings INTEGER NOT NULL,
			counts_per_minute REAL NOT NULL,
			session_duration_seconds REAL NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_username ON sessions (username)`,
		`CREATE INDEX IF NOT EXISTS idx_timestamp ON sessions (timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_counts_per_minute ON sessions (counts_per_minute)`,
	}
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

const insertSession = `INSERT INTO sessions (username, timestamp, total_crossings,
	counts_per_minute, session_duration_seconds) VALUES (?, ?, ?, ?, ?)`

const selectSessions = `SELECT id, username, timestamp, total_crossings,
	counts_per_minute, session_duration_seconds FROM sessions`

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, sess Session) (Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreAppendLatency("sqlite", msSince(start)) }()

	res, err := s.db.ExecContext(ctx, insertSession,
		sess.Username, sess.Timestamp.String(), sess.TotalCrossings, sess.RatePerMinute, sess.DurationSeconds)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	sess.ID = strconv.FormatInt(id, 10)
	return sess, nil
}

// All implements Store.
func (s *SQLiteStore) All(ctx context.Context) ([]Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreReadLatency("sqlite", msSince(start)) }()

	return s.query(ctx, selectSessions+` ORDER BY id`)
}

// ByUser implements Store.
func (s *SQLiteStore) ByUser(ctx context.Context, username string) ([]Session, error) {
	return s.query(ctx, selectSessions+` WHERE username = ? ORDER BY id`, username)
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			id   int64
			ts   string
			sess Session
		)
		if err := rows.Scan(&id, &sess.Username, &ts, &sess.TotalCrossings, &sess.RatePerMinute, &sess.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		parsed, err := model.ParseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", id, err)
		}
		sess.ID = strconv.FormatInt(id, 10)
		sess.Timestamp = parsed
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// Replace implements Importer: the table is cleared and refilled in one
// transaction, so readers see either the old or the new content.
func (s *SQLiteStore) Replace(ctx context.Context, sessions []Session) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSession)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sess := range sessions {
		if _, err = stmt.ExecContext(ctx, sess.Username, sess.Timestamp.String(),
			sess.TotalCrossings, sess.RatePerMinute, sess.DurationSeconds); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	}
	return tx.Commit()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
