package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

const maxMetadataBody = 1 << 20

// MetadataService defines what the metadata handler needs from the service
// layer.
type MetadataService interface {
	CreateMetadata(ctx context.Context, req domain.CreateMarketRequest) (domain.CreateMarketResponse, error)
	PendingMetadata(ctx context.Context, id string) (domain.PendingMetadata, error)
}

// MetadataHandler accepts market metadata ahead of on-chain creation.
type MetadataHandler struct {
	metadata MetadataService
	logger   *slog.Logger
}

// NewMetadataHandler creates a MetadataHandler.
func NewMetadataHandler(metadata MetadataService, logger *slog.Logger) *MetadataHandler {
	return &MetadataHandler{metadata: metadata, logger: logger}
}

// createMarketBody mirrors domain.CreateMarketRequest with pointer fields so
// missing required keys can be told apart from empty strings.
type createMarketBody struct {
	Question        *string  `json:"question"`
	Description     *string  `json:"description"`
	Category        *string  `json:"category"`
	ImageIPFSHash   *string  `json:"image_ipfs_hash"`
	ImageURL        *string  `json:"image_url"`
	Tags            []string `json:"tags"`
	SourceURL       *string  `json:"source_url"`
	ResolutionRules *string  `json:"resolution_rules"`
}

func (b createMarketBody) toRequest() (domain.CreateMarketRequest, error) {
	var missing []string
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"question", b.Question},
		{"description", b.Description},
		{"category", b.Category},
		{"resolution_rules", b.ResolutionRules},
	} {
		if f.v == nil {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return domain.CreateMarketRequest{}, invalidf("%s: field required", strings.Join(missing, ", "))
	}

	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.CreateMarketRequest{
		Question:        *b.Question,
		Description:     *b.Description,
		Category:        *b.Category,
		ImageIPFSHash:   b.ImageIPFSHash,
		ImageURL:        b.ImageURL,
		Tags:            tags,
		SourceURL:       b.SourceURL,
		ResolutionRules: *b.ResolutionRules,
	}, nil
}

// CreateMarket stores pending metadata and returns its id.
// POST /markets
func (h *MetadataHandler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	var body createMarketBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMetadataBody))
	if err := dec.Decode(&body); err != nil {
		writeInvalid(w, fmt.Errorf("body: invalid JSON: %v", err))
		return
	}

	req, err := body.toRequest()
	if err != nil {
		writeInvalid(w, err)
		return
	}

	resp, err := h.metadata.CreateMetadata(r.Context(), req)
	if err != nil {
		writeInternal(w, r, h.logger, "handler: create metadata failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetPending returns a pending metadata record.
// GET /metadata/{metadata_id}
func (h *MetadataHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "metadata_id")

	meta, err := h.metadata.PendingMetadata(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Metadata %s not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get pending metadata failed",
			slog.String("metadata_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, internalErrorDetail)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}
