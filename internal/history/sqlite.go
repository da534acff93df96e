// Package history persists chat exchanges per session in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Exchange is one question/answer pair within a chat session.
type Exchange struct {
	ID        int64
	SessionID string
	Question  string
	Answer    string
	CreatedAt time.Time
}

// SQLiteStore stores exchanges in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

const timeLayout = "2006-01-02 15:04:05"

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	if _, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS exchanges (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            session_id TEXT NOT NULL,
            question TEXT NOT NULL,
            answer TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_session_id ON exchanges (session_id);
    `); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SaveExchange appends one exchange to its session.
func (s *SQLiteStore) SaveExchange(ctx context.Context, e Exchange) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (session_id, question, answer, created_at) VALUES (?, ?, ?, ?)`,
		e.SessionID, e.Question, e.Answer, createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save exchange: %w", err)
	}
	return nil
}

// BySession returns a session's exchanges oldest first.
func (s *SQLiteStore) BySession(ctx context.Context, sessionID string) ([]Exchange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, question, answer, created_at
		 FROM exchanges WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var e Exchange
		var createdAt string
		if err = rows.Scan(&e.ID, &e.SessionID, &e.Question, &e.Answer, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
