// Package chain wraps the EVM RPC surface the rest of the service consumes:
// log queries, contract reads, and transaction submission. Every consumer
// receives these as injected interfaces so nothing reaches for a process-wide
// client handle.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrChainMismatch is returned when the connected node serves a different
// chain than the one the service is configured for.
var ErrChainMismatch = errors.New("connected node is on a different chain")

// LogQuerier is the log/block-height read surface of an EVM node.
type LogQuerier interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Caller executes read-only contract calls.
type Caller interface {
	Call(ctx context.Context, to common.Address, contract *abi.ABI, method string, args ...any) ([]any, error)
}

// TxService submits transactions and tracks them to inclusion. SwitchChain
// mirrors the wallet-side network-switch step: a headless signer cannot move a
// remote node to another chain, so it verifies and reports instead.
type TxService interface {
	Connected() bool
	ChainID() uint64
	SwitchChain(ctx context.Context, chainID uint64) error
	WriteContract(ctx context.Context, to common.Address, contract *abi.ABI, method string, value *big.Int, args ...any) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Client is a thin wrapper over ethclient implementing LogQuerier and Caller.
type Client struct {
	eth     *ethclient.Client
	chainID uint64
	timeout time.Duration
}

// Opts is the set of options for a new Client.
type Opts struct {
	URL     string
	ChainID uint64
	Timeout time.Duration
}

// Dial connects to the node and verifies it serves the expected chain.
func Dial(ctx context.Context, o Opts) (*Client, error) {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}

	eth, err := ethclient.DialContext(ctx, o.URL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", o.URL, err)
	}

	id, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("chain id: %w", err)
	}
	if o.ChainID != 0 && id.Uint64() != o.ChainID {
		eth.Close()
		return nil, fmt.Errorf("%w: want %d, node reports %d", ErrChainMismatch, o.ChainID, id.Uint64())
	}

	return &Client{eth: eth, chainID: id.Uint64(), timeout: o.Timeout}, nil
}

// ChainID returns the chain id reported by the node at dial time.
func (c *Client) ChainID() uint64 { return c.chainID }

// Close releases the underlying RPC connection.
func (c *Client) Close() { c.eth.Close() }

// FilterLogs runs an eth_getLogs query with the client timeout applied.
func (c *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.eth.FilterLogs(ctx, q)
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.eth.BlockNumber(ctx)
}

// Call packs a read-only contract call, executes it against the latest state,
// and unpacks the outputs.
func (c *Client) Call(ctx context.Context, to common.Address, contract *abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	vals, err := contract.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return vals, nil
}
