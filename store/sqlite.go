package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id     TEXT PRIMARY KEY,
	grant_token TEXT NOT NULL,
	nickname    TEXT NOT NULL DEFAULT '',
	destination TEXT NOT NULL DEFAULT '',
	platform    TEXT NOT NULL DEFAULT '',
	last_sign   TEXT NOT NULL DEFAULT '{}',
	bound_at    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS group_members (
	group_id TEXT NOT NULL,
	user_id  TEXT NOT NULL,
	PRIMARY KEY (group_id, user_id)
);
`

// SQLiteStore implements UserRepo and GroupRepo on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ UserRepo = (*SQLiteStore)(nil)
var _ GroupRepo = (*SQLiteStore)(nil)

// Open opens (and creates if needed) the store at path.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec *UserRecord) error {
	lastSign := rec.LastSign
	if lastSign == nil {
		lastSign = map[string]string{}
	}
	lastSignJSON, err := json.Marshal(lastSign)
	if err != nil {
		return fmt.Errorf("marshal last_sign: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, grant_token, nickname, destination, platform, last_sign, bound_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			grant_token = excluded.grant_token,
			nickname    = excluded.nickname,
			destination = excluded.destination,
			platform    = excluded.platform,
			last_sign   = excluded.last_sign,
			bound_at    = excluded.bound_at`,
		rec.UserID, rec.Grant, rec.Nickname, rec.Destination, rec.Platform,
		string(lastSignJSON), rec.BoundAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", rec.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, userID string) (*UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, grant_token, nickname, destination, platform, last_sign, bound_at
		FROM users WHERE user_id = ?`, userID)
	rec, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM group_members WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete group membership %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*UserRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, grant_token, nickname, destination, platform, last_sign, bound_at
		FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var recs []*UserRecord
	for rows.Next() {
		rec, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id) VALUES (?, ?)
		ON CONFLICT(group_id, user_id) DO NOTHING`, groupID, userID)
	if err != nil {
		return fmt.Errorf("add member %s to %s: %w", userID, groupID, err)
	}
	return nil
}

func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
	if err != nil {
		return fmt.Errorf("remove member %s from %s: %w", userID, groupID, err)
	}
	return nil
}

func (s *SQLiteStore) Members(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", groupID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*UserRecord, error) {
	var rec UserRecord
	var lastSignJSON string
	var boundAt int64
	err := row.Scan(&rec.UserID, &rec.Grant, &rec.Nickname, &rec.Destination,
		&rec.Platform, &lastSignJSON, &boundAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(lastSignJSON), &rec.LastSign); err != nil {
		return nil, fmt.Errorf("unmarshal last_sign for %s: %w", rec.UserID, err)
	}
	rec.BoundAt = time.Unix(boundAt, 0).UTC()
	return &rec, nil
}
