package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/viewspace/internal/likes"
	"github.com/danielpatrickdp/viewspace/internal/logging"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id    TEXT PRIMARY KEY,
	label         TEXT,
	candidates    INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS likes (
	session_id    TEXT NOT NULL,
	page_index    INTEGER NOT NULL,
	schema_json   TEXT,
	liked_at      TEXT NOT NULL,
	PRIMARY KEY (session_id, page_index),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS cluster_runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	generation    INTEGER NOT NULL,
	mode          TEXT,
	attempts      INTEGER NOT NULL,
	max_groups    INTEGER NOT NULL,
	candidates    INTEGER NOT NULL,
	groups_count  INTEGER NOT NULL,
	outcome       TEXT NOT NULL,
	reason        TEXT,
	metrics_json  TEXT,
	remote_error  TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);
`

// #endregion schema

// #region store-struct
// Store persists exploration sessions, likes and clustering runs in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region sessions
// CreateSession inserts a new session with a fresh ID.
func (s *Store) CreateSession(label string, candidates int) (Session, error) {
	sess := Session{
		ID:         uuid.New().String(),
		Label:      label,
		Candidates: candidates,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, label, candidates, created_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Label, sess.Candidates, sess.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(id string) (Session, error) {
	var sess Session
	var label sql.NullString
	var createdStr string
	err := s.db.QueryRow(
		`SELECT session_id, label, candidates, created_at FROM sessions WHERE session_id = ?`, id,
	).Scan(&sess.ID, &label, &sess.Candidates, &createdStr)
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	sess.Label = label.String
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return sess, nil
}

// ListSessions returns the most recent sessions.
func (s *Store) ListSessions(limit int) ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT session_id, label, candidates, created_at
		 FROM sessions ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var label sql.NullString
		var createdStr string
		if err := rows.Scan(&sess.ID, &label, &sess.Candidates, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sess.Label = label.String
		sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// #endregion sessions

// #region likes
// SaveLike stores a like, replacing any previous entry for the same page.
func (s *Store) SaveLike(sessionID string, entry likes.Entry) error {
	var schemaPtr interface{}
	if entry.Schema != nil {
		raw, err := json.Marshal(entry.Schema)
		if err != nil {
			return fmt.Errorf("marshal schema: %w", err)
		}
		schemaPtr = string(raw)
	}
	likedAt := entry.LikedAt
	if likedAt.IsZero() {
		likedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO likes (session_id, page_index, schema_json, liked_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, page_index) DO UPDATE SET schema_json = excluded.schema_json, liked_at = excluded.liked_at`,
		sessionID, entry.PageIndex, schemaPtr, likedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save like: %w", err)
	}
	return nil
}

// DeleteLike removes the like for a page. Deleting a missing like is not an error.
func (s *Store) DeleteLike(sessionID string, pageIndex int) error {
	_, err := s.db.Exec(`DELETE FROM likes WHERE session_id = ? AND page_index = ?`, sessionID, pageIndex)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

// LoadLikes returns a session's likes ordered by page index.
func (s *Store) LoadLikes(sessionID string) ([]likes.Entry, error) {
	rows, err := s.db.Query(
		`SELECT page_index, schema_json, liked_at FROM likes WHERE session_id = ? ORDER BY page_index`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	defer rows.Close()

	var entries []likes.Entry
	for rows.Next() {
		var e likes.Entry
		var schemaJSON sql.NullString
		var likedStr string
		if err := rows.Scan(&e.PageIndex, &schemaJSON, &likedStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if schemaJSON.Valid {
			var sc viewspace.Schema
			if err := json.Unmarshal([]byte(schemaJSON.String), &sc); err != nil {
				return nil, fmt.Errorf("unmarshal schema: %w", err)
			}
			e.Schema = sc
		}
		e.LikedAt, _ = time.Parse(time.RFC3339Nano, likedStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion likes

// #region runs
// RecordRun appends a clustering run to the run log.
func (s *Store) RecordRun(entry logging.RunEntry) error {
	return logging.LogRun(s.db, entry)
}

// ListRuns returns the most recent runs, newest first. An empty sessionID
// lists runs across all sessions.
func (s *Store) ListRuns(sessionID string, limit int) ([]logging.RunEntry, error) {
	query := `SELECT session_id, generation, mode, attempts, max_groups, candidates, groups_count, outcome, reason, metrics_json, remote_error, created_at
		 FROM cluster_runs`
	args := []interface{}{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []logging.RunEntry
	for rows.Next() {
		var e logging.RunEntry
		var generation int64
		var mode, reason, metrics, remoteErr sql.NullString
		var createdStr string
		if err := rows.Scan(&e.SessionID, &generation, &mode, &e.Attempts, &e.MaxGroups, &e.Candidates,
			&e.Groups, &e.Outcome, &reason, &metrics, &remoteErr, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Generation = uint64(generation)
		e.Mode = mode.String
		e.Reason = reason.String
		e.MetricsJSON = metrics.String
		e.RemoteError = remoteErr.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		runs = append(runs, e)
	}
	return runs, rows.Err()
}

// #endregion runs
