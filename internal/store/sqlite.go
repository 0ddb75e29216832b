package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"hackverse-mindmap/internal/domain/resource"
	apperrors "hackverse-mindmap/internal/errors"
)

// SQLiteStore keeps resources in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database at path. ":memory:"
// gives a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS resources (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		class_id TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		content JSON,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_resources_user_created ON resources(user_id, created_at DESC);
	`
	_, err := s.db.Exec(query)
	return err
}

const selectColumns = `SELECT id, user_id, class_id, type, name, content, created_at, updated_at FROM resources`

func (s *SQLiteStore) Get(ctx context.Context, userID, resourceID string) (*resource.Resource, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE user_id = ? AND id = ?`, userID, resourceID)
	res, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(resourceID)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("resource get failed").WithCause(err)
	}
	return res, nil
}

func (s *SQLiteStore) Put(ctx context.Context, res *resource.Resource) error {
	if err := validateForPut(res); err != nil {
		return err
	}
	var content interface{}
	if len(res.Content) > 0 {
		content = string(res.Content)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (id, user_id, class_id, type, name, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			class_id = excluded.class_id,
			type = excluded.type,
			name = excluded.name,
			content = excluded.content,
			updated_at = excluded.updated_at`,
		res.ID, res.UserID, res.ClassID, res.Type, res.Name, content,
		res.CreatedAt.UTC(), res.UpdatedAt.UTC())
	if err != nil {
		return apperrors.NewPersistenceError("resource put failed").WithCause(err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, userID, classID string) ([]resource.Resource, error) {
	query := selectColumns + ` WHERE user_id = ?`
	args := []interface{}{userID}
	if classID != "" {
		query += ` AND class_id = ?`
		args = append(args, classID)
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("resource list failed").WithCause(err)
	}
	defer rows.Close()

	out := []resource.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("failed to decode resource").WithCause(err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("resource list failed").WithCause(err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResource(row scanner) (*resource.Resource, error) {
	var (
		res       resource.Resource
		content   sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&res.ID, &res.UserID, &res.ClassID, &res.Type, &res.Name, &content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if content.Valid {
		res.Content = json.RawMessage(content.String)
	}
	res.CreatedAt = createdAt
	res.UpdatedAt = updatedAt
	return &res, nil
}
