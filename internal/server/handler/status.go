package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/MayankSewatkar/vantagepoint/internal/platform/chain"
)

// probeTimeout bounds each upstream probe made by GetStatus.
const probeTimeout = 3 * time.Second

// probeUnreachable is reported for a failed probe. The underlying error can
// carry RPC URLs with API keys, so it is only logged.
const probeUnreachable = "unreachable"

// ChainProbe reads the head of the market contract's chain.
type ChainProbe interface {
	Contract() string
	Head(ctx context.Context) (chain.Head, error)
}

// SubgraphProbe reads the latest block indexed by the subgraph.
type SubgraphProbe interface {
	FetchLatestBlock(ctx context.Context) (int64, error)
}

// StatusInfo names the backends selected at startup.
type StatusInfo struct {
	Version      string
	CacheBackend string
	StoreBackend string
	TradeSource  string
}

// StatusHandler reports which backends are wired and whether the optional
// upstreams answer.
type StatusHandler struct {
	info     StatusInfo
	chain    ChainProbe
	subgraph SubgraphProbe
	logger   *slog.Logger
}

// NewStatusHandler creates a StatusHandler. Nil probes are reported as
// disabled.
func NewStatusHandler(info StatusInfo, chainProbe ChainProbe, subgraphProbe SubgraphProbe, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{info: info, chain: chainProbe, subgraph: subgraphProbe, logger: logger}
}

type chainStatus struct {
	Enabled          bool    `json:"enabled"`
	Contract         string  `json:"contract,omitempty"`
	ChainID          *uint64 `json:"chain_id,omitempty"`
	HeadBlock        *uint64 `json:"head_block,omitempty"`
	ContractDeployed *bool   `json:"contract_deployed,omitempty"`
	Error            string  `json:"error,omitempty"`
}

type subgraphStatus struct {
	Enabled     bool   `json:"enabled"`
	LatestBlock *int64 `json:"latest_block,omitempty"`
	Error       string `json:"error,omitempty"`
}

type statusResponse struct {
	Version      string         `json:"version"`
	CacheBackend string         `json:"cache_backend"`
	StoreBackend string         `json:"store_backend"`
	TradeSource  string         `json:"trade_source"`
	Chain        chainStatus    `json:"chain"`
	Subgraph     subgraphStatus `json:"subgraph"`
}

// GetStatus responds with the backend report. Probe failures are reported in
// the body; the endpoint itself always answers 200.
// GET /status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Version:      h.info.Version,
		CacheBackend: h.info.CacheBackend,
		StoreBackend: h.info.StoreBackend,
		TradeSource:  h.info.TradeSource,
	}

	if h.chain != nil {
		resp.Chain.Enabled = true
		resp.Chain.Contract = h.chain.Contract()
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		head, err := h.chain.Head(ctx)
		cancel()
		if err != nil {
			h.logger.WarnContext(r.Context(), "handler: chain probe failed", slog.String("error", err.Error()))
			resp.Chain.Error = probeUnreachable
		} else {
			resp.Chain.ChainID = &head.ChainID
			resp.Chain.HeadBlock = &head.BlockNumber
			resp.Chain.ContractDeployed = &head.ContractDeployed
		}
	}

	if h.subgraph != nil {
		resp.Subgraph.Enabled = true
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		block, err := h.subgraph.FetchLatestBlock(ctx)
		cancel()
		if err != nil {
			h.logger.WarnContext(r.Context(), "handler: subgraph probe failed", slog.String("error", err.Error()))
			resp.Subgraph.Error = probeUnreachable
		} else {
			resp.Subgraph.LatestBlock = &block
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
