// Package session keeps web login sessions in SQLite.
//
// A session holds only what the web surface needs between requests: the
// OAuth state for the pending login, the Spotify access token, and the last
// city searched. Resolution results are never stored.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is one browser's login state.
type Session struct {
	ID          string
	State       string
	AccessToken string
	City        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LoggedIn reports whether the session carries an access token.
func (s *Session) LoggedIn() bool {
	return s.AccessToken != ""
}

// Store manages sessions backed by SQLite
type Store struct {
	db     *sql.DB
	maxAge time.Duration
	now    func() time.Time
}

// NewStore opens (or creates) the session database at dbPath. Sessions idle
// for longer than maxAge are treated as absent.
func NewStore(dbPath string, maxAge time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps :memory: databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			access_token TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, maxAge: maxAge, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Create starts a new anonymous session with a fresh OAuth state.
func (s *Store) Create(ctx context.Context) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		State:     uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO sessions (id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, sess.ID, sess.State, now.Unix(), now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return sess, nil
}

// Get loads a session. Returns ErrNotFound if the id is unknown, malformed,
// or idle past the store's max age.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query := `
		SELECT id, state, access_token, city, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`

	var sess Session
	var createdUnix, updatedUnix int64
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sess.ID,
		&sess.State,
		&sess.AccessToken,
		&sess.City,
		&createdUnix,
		&updatedUnix,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess.CreatedAt = time.Unix(createdUnix, 0)
	sess.UpdatedAt = time.Unix(updatedUnix, 0)

	if s.maxAge > 0 && s.now().Sub(sess.UpdatedAt) > s.maxAge {
		return nil, ErrNotFound
	}

	return &sess, nil
}

// SetAccessToken stores the token obtained at login.
func (s *Store) SetAccessToken(ctx context.Context, id, token string) error {
	return s.update(ctx, id, "access_token", token)
}

// SetCity remembers the last city searched.
func (s *Store) SetCity(ctx context.Context, id, city string) error {
	return s.update(ctx, id, "city", city)
}

func (s *Store) update(ctx context.Context, id, column, value string) error {
	// column is always one of the fixed names above
	query := fmt.Sprintf(`UPDATE sessions SET %s = ?, updated_at = ? WHERE id = ?`, column)

	result, err := s.db.ExecContext(ctx, query, value, s.now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", column, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Cleanup removes sessions idle longer than the store's max age.
func (s *Store) Cleanup(ctx context.Context) (int64, error) {
	if s.maxAge <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.maxAge).Unix()

	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// Count returns the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
