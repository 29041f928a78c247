// Package subgraph is a GraphQL client for the market indexing subgraph. It
// serves recent trades and the indexed head block.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// maxFirst is the largest page the hosted subgraph service accepts.
const maxFirst = 1000

// Client queries the subgraph over HTTP.
type Client struct {
	graphqlURL string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new subgraph client.
//
// graphqlURL is the subgraph endpoint, e.g.
// "https://api.thegraph.com/subgraphs/name/vantagepoint/markets".
func NewClient(graphqlURL, apiKey string) *Client {
	return &Client{
		graphqlURL: graphqlURL,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

const tradesQuery = `
	query MarketTrades($market: BigInt!, $before: BigInt!, $first: Int!) {
		trades(
			first: $first
			orderBy: timestamp
			orderDirection: desc
			where: { marketId: $market, timestamp_lt: $before }
		) {
			trader
			isBuyYes
			usdcIn
			sharesOut
			priceBps
			transactionHash
			timestamp
		}
	}
`

// RecentTrades returns up to q.Limit trades of q.MarketID, newest first,
// strictly older than q.BeforeTS when set.
func (c *Client) RecentTrades(ctx context.Context, q domain.TradeQuery) ([]domain.Trade, error) {
	first := q.Limit
	if first <= 0 || first > maxFirst {
		first = maxFirst
	}
	before := time.Now().Unix() + 1
	if q.BeforeTS != nil {
		before = int64(*q.BeforeTS)
	}

	variables := map[string]any{
		"market": strconv.FormatInt(q.MarketID, 10),
		"before": strconv.FormatInt(before, 10),
		"first":  first,
	}

	data, err := c.doQuery(ctx, tradesQuery, variables)
	if err != nil {
		return nil, fmt.Errorf("subgraph: fetch trades for market %d: %w", q.MarketID, err)
	}

	var result struct {
		Trades []struct {
			Trader          string `json:"trader"`
			IsBuyYes        bool   `json:"isBuyYes"`
			USDCIn          string `json:"usdcIn"`
			SharesOut       string `json:"sharesOut"`
			PriceBps        string `json:"priceBps"`
			TransactionHash string `json:"transactionHash"`
			Timestamp       string `json:"timestamp"`
		} `json:"trades"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("subgraph: decode trades: %w", err)
	}

	trades := make([]domain.Trade, 0, len(result.Trades))
	for i, t := range result.Trades {
		usdcIn, err := strconv.ParseFloat(t.USDCIn, 64)
		if err != nil {
			return nil, fmt.Errorf("subgraph: decode trade %d usdcIn: %w", i, err)
		}
		sharesOut, err := strconv.ParseFloat(t.SharesOut, 64)
		if err != nil {
			return nil, fmt.Errorf("subgraph: decode trade %d sharesOut: %w", i, err)
		}
		price, err := strconv.Atoi(t.PriceBps)
		if err != nil {
			return nil, fmt.Errorf("subgraph: decode trade %d priceBps: %w", i, err)
		}
		ts, err := strconv.ParseFloat(t.Timestamp, 64)
		if err != nil {
			return nil, fmt.Errorf("subgraph: decode trade %d timestamp: %w", i, err)
		}

		trades = append(trades, domain.Trade{
			MarketID:  q.MarketID,
			Trader:    t.Trader,
			IsBuyYes:  t.IsBuyYes,
			USDCIn:    usdcIn,
			SharesOut: sharesOut,
			PriceBps:  price,
			TxHash:    t.TransactionHash,
			Timestamp: ts,
		})
	}
	return trades, nil
}

// FetchLatestBlock returns the latest block number indexed by the subgraph.
func (c *Client) FetchLatestBlock(ctx context.Context) (int64, error) {
	query := `
		query LatestBlock {
			_meta {
				block {
					number
				}
			}
		}
	`

	data, err := c.doQuery(ctx, query, nil)
	if err != nil {
		return 0, fmt.Errorf("subgraph: fetch latest block: %w", err)
	}

	var result struct {
		Meta struct {
			Block struct {
				Number int64 `json:"number"`
			} `json:"block"`
		} `json:"_meta"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("subgraph: decode latest block: %w", err)
	}
	return result.Meta.Block.Number, nil
}

// doQuery posts a GraphQL query and returns the raw "data" field.
func (c *Client) doQuery(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}
	return gqlResp.Data, nil
}

var _ domain.TradeSource = (*Client)(nil)
