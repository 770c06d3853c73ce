package staking

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hashkey-chain/hodlium/internal/chain"
)

// FlowState tracks one write operation through its lifecycle.
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowPending
	FlowConfirming
	FlowSuccess
	FlowFailed
)

func (s FlowState) String() string {
	switch s {
	case FlowIdle:
		return "idle"
	case FlowPending:
		return "pending"
	case FlowConfirming:
		return "confirming"
	case FlowSuccess:
		return "success"
	case FlowFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FlowStatus is a point-in-time snapshot of a write flow.
type FlowStatus struct {
	State  FlowState
	TxHash common.Hash
	Err    error
}

// flow serializes one class of write operation and records its progress.
// Failures are recorded on the flow and returned, so pollers and the caller
// observe the same outcome.
type flow struct {
	mu     sync.Mutex
	status FlowStatus
}

func (f *flow) Status() FlowStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *flow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.State == FlowPending || f.status.State == FlowConfirming {
		return ErrTxInFlight
	}
	f.status = FlowStatus{State: FlowPending}
	return nil
}

func (f *flow) confirming(hash common.Hash) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.State = FlowConfirming
	f.status.TxHash = hash
}

func (f *flow) succeed(hash common.Hash) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = FlowStatus{State: FlowSuccess, TxHash: hash}
}

func (f *flow) fail(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.State = FlowFailed
	f.status.Err = err
	return err
}

// run drives a submitted transaction to its terminal state. submit performs
// the contract write and returns the tx hash.
func (f *flow) run(ctx context.Context, tx chain.TxService, submit func(ctx context.Context) (common.Hash, error)) (common.Hash, error) {
	hash, err := submit(ctx)
	if err != nil {
		return common.Hash{}, f.fail(err)
	}
	f.confirming(hash)

	receipt, err := tx.WaitForReceipt(ctx, hash)
	if err != nil {
		return hash, f.fail(fmt.Errorf("await receipt: %w", err))
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return hash, f.fail(ErrTxReverted)
	}

	f.succeed(hash)
	return hash, nil
}
