package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// MetadataStore implements domain.MetadataStore using PostgreSQL.
type MetadataStore struct {
	pool *pgxpool.Pool
}

// NewMetadataStore creates a MetadataStore backed by the given pool.
func NewMetadataStore(pool *pgxpool.Pool) *MetadataStore {
	return &MetadataStore{pool: pool}
}

// SavePending inserts a pending metadata record. Ids minted within the same
// second collide; the later submission overwrites the earlier one.
func (s *MetadataStore) SavePending(ctx context.Context, meta domain.PendingMetadata) error {
	const query = `
		INSERT INTO pending_metadata (
			metadata_id, question, description, category, image_url,
			tags, source_url, resolution_rules, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (metadata_id) DO UPDATE SET
			question         = EXCLUDED.question,
			description      = EXCLUDED.description,
			category         = EXCLUDED.category,
			image_url        = EXCLUDED.image_url,
			tags             = EXCLUDED.tags,
			source_url       = EXCLUDED.source_url,
			resolution_rules = EXCLUDED.resolution_rules,
			created_at       = EXCLUDED.created_at`

	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := s.pool.Exec(ctx, query,
		meta.MetadataID, meta.Question, meta.Description, meta.Category, meta.ImageURL,
		tags, meta.SourceURL, meta.ResolutionRules, meta.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: save pending metadata %s: %w", meta.MetadataID, err)
	}
	return nil
}

// GetPending loads a pending metadata record, or domain.ErrNotFound.
func (s *MetadataStore) GetPending(ctx context.Context, id string) (domain.PendingMetadata, error) {
	const query = `
		SELECT metadata_id, question, description, category, image_url,
		       tags, source_url, resolution_rules, created_at
		FROM pending_metadata WHERE metadata_id = $1`

	var m domain.PendingMetadata
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&m.MetadataID, &m.Question, &m.Description, &m.Category, &m.ImageURL,
		&m.Tags, &m.SourceURL, &m.ResolutionRules, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PendingMetadata{}, fmt.Errorf("postgres: pending metadata %s: %w", id, domain.ErrNotFound)
		}
		return domain.PendingMetadata{}, fmt.Errorf("postgres: get pending metadata %s: %w", id, err)
	}
	return m, nil
}

var _ domain.MetadataStore = (*MetadataStore)(nil)
