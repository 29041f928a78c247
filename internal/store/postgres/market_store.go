package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// MarketStore implements domain.MarketRepository using PostgreSQL.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a new MarketStore backed by the given connection pool.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

const marketColumns = `
	market_id, question, description, category, image_url, tags,
	source_url, creator_note, resolution_rules,
	yes_price_bps, no_price_bps, total_volume_usd, volume_24h_usd,
	total_liquidity, num_traders`

// scanMarket scans a single market row into a domain.Market.
func scanMarket(row pgx.Row) (domain.Market, error) {
	var m domain.Market
	var category string
	err := row.Scan(
		&m.MarketID, &m.Question, &m.Description, &category, &m.ImageURL, &m.Tags,
		&m.SourceURL, &m.CreatorNote, &m.ResolutionRules,
		&m.YesPriceBps, &m.NoPriceBps, &m.TotalVolumeUSD, &m.Volume24hUSD,
		&m.TotalLiquidity, &m.NumTraders,
	)
	if err != nil {
		return domain.Market{}, err
	}
	m.Category = domain.Category(category)
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m, nil
}

// List returns every market ordered by id.
func (s *MarketStore) List(ctx context.Context) ([]domain.Market, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+marketColumns+" FROM markets ORDER BY market_id")
	if err != nil {
		return nil, fmt.Errorf("postgres: list markets: %w", err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan market: %w", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list markets rows: %w", err)
	}
	return markets, nil
}

// GetByID returns one market, or domain.ErrNotFound.
func (s *MarketStore) GetByID(ctx context.Context, id int64) (domain.Market, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+marketColumns+" FROM markets WHERE market_id = $1", id)
	m, err := scanMarket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, fmt.Errorf("postgres: market %d: %w", id, domain.ErrNotFound)
		}
		return domain.Market{}, fmt.Errorf("postgres: get market %d: %w", id, err)
	}
	return m, nil
}

// UpsertBatch inserts or updates markets in one batch. It is used to load the
// seed list into an empty database.
func (s *MarketStore) UpsertBatch(ctx context.Context, markets []domain.Market) error {
	if len(markets) == 0 {
		return nil
	}

	const query = `
		INSERT INTO markets (` + marketColumns + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
		ON CONFLICT (market_id) DO UPDATE SET
			question         = EXCLUDED.question,
			description      = EXCLUDED.description,
			category         = EXCLUDED.category,
			image_url        = EXCLUDED.image_url,
			tags             = EXCLUDED.tags,
			source_url       = EXCLUDED.source_url,
			creator_note     = EXCLUDED.creator_note,
			resolution_rules = EXCLUDED.resolution_rules,
			yes_price_bps    = EXCLUDED.yes_price_bps,
			no_price_bps     = EXCLUDED.no_price_bps,
			total_volume_usd = EXCLUDED.total_volume_usd,
			volume_24h_usd   = EXCLUDED.volume_24h_usd,
			total_liquidity  = EXCLUDED.total_liquidity,
			num_traders      = EXCLUDED.num_traders,
			updated_at       = NOW()`

	batch := &pgx.Batch{}
	for _, m := range markets {
		batch.Queue(query,
			m.MarketID, m.Question, m.Description, string(m.Category), m.ImageURL, m.Tags,
			m.SourceURL, m.CreatorNote, m.ResolutionRules,
			m.YesPriceBps, m.NoPriceBps, m.TotalVolumeUSD, m.Volume24hUSD,
			m.TotalLiquidity, m.NumTraders,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range markets {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert market batch item %d: %w", i, err)
		}
	}
	return nil
}

// Count returns the number of stored markets.
func (s *MarketStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM markets").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count markets: %w", err)
	}
	return n, nil
}

var _ domain.MarketRepository = (*MarketStore)(nil)
