package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/domain/resource"
	apperrors "hackverse-mindmap/internal/errors"
)

// SupabaseStore keeps resources in the Supabase "resources" table.
type SupabaseStore struct {
	client *supabase.Client
	table  string
	logger *zap.Logger
}

// supabaseRow mirrors the table columns.
type supabaseRow struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ClassID   string          `json:"class_id"`
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewSupabaseStore(cfg config.SupabaseConfig, logger *zap.Logger) (*SupabaseStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := supabase.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	table := cfg.Table
	if table == "" {
		table = "resources"
	}
	return &SupabaseStore{client: client, table: table, logger: logger}, nil
}

// The postgrest client has no context support; ctx is only checked before
// each call.
func (s *SupabaseStore) Get(ctx context.Context, userID, resourceID string) (*resource.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("id", resourceID).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, apperrors.NewPersistenceError("resource get failed").WithCause(err)
	}

	rows, err := decodeRows(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound(resourceID)
	}
	return rows[0].toResource(), nil
}

func (s *SupabaseStore) Put(ctx context.Context, res *resource.Resource) error {
	if err := validateForPut(res); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	row := supabaseRow{
		ID:        res.ID,
		UserID:    res.UserID,
		ClassID:   res.ClassID,
		Type:      res.Type,
		Name:      res.Name,
		Content:   res.Content,
		CreatedAt: res.CreatedAt,
	}
	if row.Content == nil {
		row.Content = json.RawMessage("null")
	}
	if _, _, err := s.client.From(s.table).Upsert(row, "id", "minimal", "").Execute(); err != nil {
		return apperrors.NewPersistenceError("resource put failed").WithCause(err)
	}
	s.logger.Debug("stored resource", zap.String("resource_id", res.ID))
	return nil
}

func (s *SupabaseStore) List(ctx context.Context, userID, classID string) ([]resource.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := s.client.From(s.table).
		Select("*", "", false).
		Eq("user_id", userID)
	if classID != "" {
		query = query.Eq("class_id", classID)
	}
	data, _, err := query.Order("created_at", &postgrest.OrderOpts{Ascending: false}).Execute()
	if err != nil {
		return nil, apperrors.NewPersistenceError("resource list failed").WithCause(err)
	}

	rows, err := decodeRows(data)
	if err != nil {
		return nil, err
	}
	out := make([]resource.Resource, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toResource())
	}
	return out, nil
}

func (s *SupabaseStore) Close() error { return nil }

func decodeRows(data []byte) ([]supabaseRow, error) {
	var rows []supabaseRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, apperrors.NewPersistenceError("failed to decode resources").WithCause(err)
	}
	return rows, nil
}

func (r *supabaseRow) toResource() *resource.Resource {
	return &resource.Resource{
		ID:        r.ID,
		UserID:    r.UserID,
		ClassID:   r.ClassID,
		Type:      r.Type,
		Name:      r.Name,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.CreatedAt,
	}
}
