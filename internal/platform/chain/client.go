// Package chain reads the market contract's chain through a JSON-RPC
// endpoint using go-ethereum's ethclient.
package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Head summarises the chain state seen by the RPC endpoint.
type Head struct {
	ChainID          uint64 `json:"chain_id"`
	BlockNumber      uint64 `json:"block_number"`
	ContractDeployed bool   `json:"contract_deployed"`
}

// Client wraps an ethclient connection and the market contract address.
type Client struct {
	eth      *ethclient.Client
	contract common.Address
}

// ValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
func ValidAddress(s string) bool {
	return common.IsHexAddress(strings.TrimSpace(s))
}

// Dial connects to rpcURL. HTTP endpoints connect lazily on first call.
func Dial(ctx context.Context, rpcURL, contractAddress string) (*Client, error) {
	if !ValidAddress(contractAddress) {
		return nil, fmt.Errorf("chain: invalid contract address %q", contractAddress)
	}
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", rpcURL, err)
	}
	return &Client{
		eth:      eth,
		contract: common.HexToAddress(contractAddress),
	}, nil
}

// Contract returns the checksummed contract address.
func (c *Client) Contract() string {
	return c.contract.Hex()
}

// Head reads the chain id, latest block number and whether code is deployed
// at the contract address.
func (c *Client) Head(ctx context.Context) (Head, error) {
	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return Head{}, fmt.Errorf("chain: chain id: %w", err)
	}
	block, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return Head{}, fmt.Errorf("chain: block number: %w", err)
	}
	code, err := c.eth.CodeAt(ctx, c.contract, nil)
	if err != nil {
		return Head{}, fmt.Errorf("chain: code at %s: %w", c.contract.Hex(), err)
	}
	return Head{
		ChainID:          chainID.Uint64(),
		BlockNumber:      block,
		ContractDeployed: len(code) > 0,
	}, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}
