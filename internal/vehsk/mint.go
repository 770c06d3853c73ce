package vehsk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hashkey-chain/hodlium/internal/chain"
)

// Mint lifecycle errors. Each failure both sets the minter's Failed state and
// is returned to the caller; observers polling Status and callers awaiting
// the result see the same outcome.
var (
	ErrNotConnected   = errors.New("no signer connected")
	ErrNothingToClaim = errors.New("no mintable balance")
	ErrMintInFlight   = errors.New("mint already in progress")
	ErrMintReverted   = errors.New("mint transaction reverted")
)

// MintState tracks one claim attempt through its lifecycle.
type MintState int

const (
	MintIdle MintState = iota
	MintPending
	MintConfirming
	MintSuccess
	MintFailed
)

func (s MintState) String() string {
	switch s {
	case MintIdle:
		return "idle"
	case MintPending:
		return "pending"
	case MintConfirming:
		return "confirming"
	case MintSuccess:
		return "success"
	case MintFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MintStatus is a point-in-time snapshot of the current or last attempt.
type MintStatus struct {
	State  MintState
	TxHash common.Hash
	Err    error
}

// mintableReader is the veHSK read surface the minter needs.
type mintableReader interface {
	MintableAmount(ctx context.Context, account common.Address) (chain.MintableAmountInfo, error)
}

// Minter submits the veHSK mint transaction and tracks it to inclusion. At
// most one attempt runs at a time per Minter.
type Minter struct {
	tx       chain.TxService
	reader   mintableReader
	contract common.Address
	chainID  uint64

	// onSuccess runs after a confirmed mint, before Mint returns. Used to
	// refresh cached balances that the mint just invalidated.
	onSuccess func()

	mu     sync.Mutex
	status MintStatus
}

// NewMinter builds a Minter for the veHSK contract on the given chain.
// onSuccess may be nil.
func NewMinter(tx chain.TxService, reader mintableReader, contract common.Address, chainID uint64, onSuccess func()) *Minter {
	return &Minter{
		tx:        tx,
		reader:    reader,
		contract:  contract,
		chainID:   chainID,
		onSuccess: onSuccess,
	}
}

// Status returns a snapshot of the current or most recent attempt.
func (m *Minter) Status() MintStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Mint claims the account's full mintable balance. It verifies a signer is
// connected and on the right chain, confirms there is something to claim,
// submits mint(), and blocks until the receipt lands.
func (m *Minter) Mint(ctx context.Context, account common.Address) (common.Hash, error) {
	if err := m.begin(); err != nil {
		return common.Hash{}, err
	}

	if !m.tx.Connected() {
		return common.Hash{}, m.fail(ErrNotConnected)
	}

	mintable, err := m.reader.MintableAmount(ctx, account)
	if err != nil {
		return common.Hash{}, m.fail(fmt.Errorf("read mintable amount: %w", err))
	}
	if mintable.MintableTotal.Sign() == 0 {
		return common.Hash{}, m.fail(ErrNothingToClaim)
	}

	if m.tx.ChainID() != m.chainID {
		if err := m.tx.SwitchChain(ctx, m.chainID); err != nil {
			return common.Hash{}, m.fail(fmt.Errorf("switch chain: %w", err))
		}
	}

	hash, err := m.tx.WriteContract(ctx, m.contract, &chain.VeHSKABI, "mint", nil)
	if err != nil {
		return common.Hash{}, m.fail(fmt.Errorf("submit mint: %w", err))
	}
	m.confirming(hash)

	slog.Info("mint submitted, awaiting receipt",
		"account", account.Hex(),
		"tx", hash.Hex(),
		"mintable", mintable.MintableTotal.String(),
	)

	receipt, err := m.tx.WaitForReceipt(ctx, hash)
	if err != nil {
		return hash, m.fail(fmt.Errorf("await mint receipt: %w", err))
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return hash, m.fail(ErrMintReverted)
	}

	m.succeed(hash)
	if m.onSuccess != nil {
		m.onSuccess()
	}
	return hash, nil
}

func (m *Minter) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status.State == MintPending || m.status.State == MintConfirming {
		return ErrMintInFlight
	}
	m.status = MintStatus{State: MintPending}
	return nil
}

func (m *Minter) confirming(hash common.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.State = MintConfirming
	m.status.TxHash = hash
}

func (m *Minter) succeed(hash common.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = MintStatus{State: MintSuccess, TxHash: hash}
}

// fail records the error in the status and returns it, so state observers
// and the direct caller agree on the failure.
func (m *Minter) fail(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.State = MintFailed
	m.status.Err = err
	return err
}
