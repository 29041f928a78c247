package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// DefaultIPFSGateway prefixes an image IPFS hash to form its URL.
const DefaultIPFSGateway = "https://cloudflare-ipfs.com/ipfs/"

func pendingKey(id string) string { return "pending_meta:" + id }

// MetadataService accepts market metadata ahead of the on-chain create call.
// Records always land in the cache; the durable store and the pinner are
// optional and best effort.
type MetadataService struct {
	cache   domain.Cache
	store   domain.MetadataStore
	pinner  domain.Pinner
	gateway string
	now     func() time.Time
	logger  *slog.Logger
}

// MetadataOption configures a MetadataService.
type MetadataOption func(*MetadataService)

// WithMetadataStore persists every pending record to store.
func WithMetadataStore(store domain.MetadataStore) MetadataOption {
	return func(s *MetadataService) { s.store = store }
}

// WithPinner uploads every pending record as JSON through p.
func WithPinner(p domain.Pinner) MetadataOption {
	return func(s *MetadataService) { s.pinner = p }
}

// WithMetadataClock overrides the clock used for ids and timestamps.
func WithMetadataClock(now func() time.Time) MetadataOption {
	return func(s *MetadataService) { s.now = now }
}

// NewMetadataService creates a MetadataService. An empty gateway uses
// DefaultIPFSGateway.
func NewMetadataService(cache domain.Cache, gateway string, logger *slog.Logger, opts ...MetadataOption) *MetadataService {
	if gateway == "" {
		gateway = DefaultIPFSGateway
	}
	s := &MetadataService{
		cache:   cache,
		gateway: gateway,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveImageURL picks the image URL of a submission: an explicit URL wins,
// then the gateway URL of the IPFS hash, else empty.
func ResolveImageURL(gateway string, imageURL, ipfsHash *string) string {
	switch {
	case imageURL != nil && *imageURL != "":
		return *imageURL
	case ipfsHash != nil && *ipfsHash != "":
		return gateway + *ipfsHash
	default:
		return ""
	}
}

// CreateMetadata stores a pending metadata record and returns its id. The
// id is "vp-" followed by the current unix second; two submissions within
// the same second share an id and the later one wins.
func (s *MetadataService) CreateMetadata(ctx context.Context, req domain.CreateMarketRequest) (domain.CreateMarketResponse, error) {
	now := s.now()
	id := "vp-" + strconv.FormatInt(now.Unix(), 10)

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	meta := domain.PendingMetadata{
		MetadataID:      id,
		Question:        req.Question,
		Description:     req.Description,
		Category:        req.Category,
		ImageURL:        ResolveImageURL(s.gateway, req.ImageURL, req.ImageIPFSHash),
		Tags:            tags,
		SourceURL:       req.SourceURL,
		ResolutionRules: req.ResolutionRules,
		CreatedAt:       unixSeconds(now),
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return domain.CreateMarketResponse{}, fmt.Errorf("metadata_service: encode %s: %w", id, err)
	}
	if err := s.cache.Set(ctx, pendingKey(id), data); err != nil {
		s.logger.WarnContext(ctx, "metadata_service: cache set failed",
			slog.String("metadata_id", id),
			slog.String("error", err.Error()),
		)
	}

	if s.store != nil {
		if err := s.store.SavePending(ctx, meta); err != nil {
			s.logger.WarnContext(ctx, "metadata_service: persist failed",
				slog.String("metadata_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.pinner != nil {
		if err := s.pinner.Pin(ctx, id+".json", bytes.NewReader(data), "application/json"); err != nil {
			s.logger.WarnContext(ctx, "metadata_service: pin failed",
				slog.String("metadata_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "metadata_service: pending metadata stored",
		slog.String("metadata_id", id),
		slog.String("category", meta.Category),
	)
	return domain.CreateMarketResponse{MetadataID: id, IPFSURI: "ipfs://" + id}, nil
}

// PendingMetadata reads a pending record back, from the cache first and then
// from the durable store when one is configured.
func (s *MetadataService) PendingMetadata(ctx context.Context, id string) (domain.PendingMetadata, error) {
	if data, ok := s.cache.Get(ctx, pendingKey(id)); ok {
		var meta domain.PendingMetadata
		if err := json.Unmarshal(data, &meta); err == nil {
			return meta, nil
		}
	}

	if s.store == nil {
		return domain.PendingMetadata{}, fmt.Errorf("metadata_service: pending %s: %w", id, domain.ErrNotFound)
	}
	meta, err := s.store.GetPending(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "metadata_service: store lookup failed",
				slog.String("metadata_id", id),
				slog.String("error", err.Error()),
			)
		}
		return domain.PendingMetadata{}, fmt.Errorf("metadata_service: pending %s: %w", id, err)
	}
	return meta, nil
}
