package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrNoSigner is returned by write operations when the sender was built
// without a private key.
var ErrNoSigner = errors.New("no signing key configured")

// Sender signs and submits transactions with a locally held key.
type Sender struct {
	eth          *ethclient.Client
	key          *ecdsa.PrivateKey
	from         common.Address
	chainID      *big.Int
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// NewSender creates a Sender bound to the given node connection. hexKey may be
// empty, in which case the sender is "not connected" and every write fails the
// precondition check.
func NewSender(client *Client, hexKey string) (*Sender, error) {
	s := &Sender{
		eth:          client.eth,
		chainID:      new(big.Int).SetUint64(client.chainID),
		pollInterval: 2 * time.Second,
		waitTimeout:  5 * time.Minute,
	}
	if hexKey == "" {
		return s, nil
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	s.key = key
	s.from = crypto.PubkeyToAddress(key.PublicKey)
	return s, nil
}

// Connected reports whether a signing key is available.
func (s *Sender) Connected() bool { return s.key != nil }

// From returns the signer address (zero if not connected).
func (s *Sender) From() common.Address { return s.from }

// ChainID returns the chain the sender signs for.
func (s *Sender) ChainID() uint64 { return s.chainID.Uint64() }

// SwitchChain verifies the sender is on the requested chain. A headless signer
// cannot renegotiate the node's chain, so a mismatch is terminal.
func (s *Sender) SwitchChain(ctx context.Context, chainID uint64) error {
	if s.chainID.Uint64() == chainID {
		return nil
	}
	return fmt.Errorf("%w: want %d, signer is on %d", ErrChainMismatch, chainID, s.chainID.Uint64())
}

// WriteContract packs, signs, and submits a contract call, returning the
// transaction hash once the node accepts it.
func (s *Sender) WriteContract(ctx context.Context, to common.Address, contract *abi.ABI, method string, value *big.Int, args ...any) (common.Hash, error) {
	if s.key == nil {
		return common.Hash{}, ErrNoSigner
	}

	data, err := contract.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack %s: %w", method, err)
	}

	nonce, err := s.eth.PendingNonceAt(ctx, s.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("nonce: %w", err)
	}

	gasPrice, err := s.eth.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("gas price: %w", err)
	}

	msg := ethereum.CallMsg{From: s.from, To: &to, Value: value, Data: data}
	gasLimit, err := s.eth.EstimateGas(ctx, msg)
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas for %s: %w", method, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign: %w", err)
	}

	if err := s.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send %s: %w", method, err)
	}

	slog.Info("transaction submitted",
		"method", method,
		"to", to.Hex(),
		"tx_hash", signed.Hash().Hex(),
		"nonce", nonce,
	)
	return signed.Hash(), nil
}

// WaitForReceipt polls for the transaction receipt until it lands or the wait
// timeout elapses.
func (s *Sender) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("receipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
