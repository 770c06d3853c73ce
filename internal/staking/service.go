// Package staking submits stake and unstake transactions and exposes the
// contract-level overview reads. Write flows follow the same dual-surface
// policy as the mint flow: every failure is recorded on the flow state and
// returned to the caller.
package staking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hashkey-chain/hodlium/internal/chain"
	"github.com/hashkey-chain/hodlium/internal/events"
)

var (
	ErrNotConnected   = errors.New("no signer connected")
	ErrTxInFlight     = errors.New("transaction already in progress")
	ErrTxReverted     = errors.New("transaction reverted")
	ErrBelowMinimum   = errors.New("amount below minimum stake")
	ErrNotLockedClass = errors.New("stake type is not a locked class")
)

// overviewReader is the staking read surface the service needs.
type overviewReader interface {
	Overview(ctx context.Context, simulatedAmount *big.Int) (chain.StakingOverview, error)
}

// Service drives stake, stakeLocked and unstakeLocked transactions. Each
// operation class runs at most one transaction at a time.
type Service struct {
	tx       chain.TxService
	reader   overviewReader
	contract common.Address
	chainID  uint64

	stakeFlow         flow
	stakeLockedFlow   flow
	unstakeLockedFlow flow
}

// NewService builds a Service over the staking contract on the given chain.
func NewService(tx chain.TxService, reader overviewReader, contract common.Address, chainID uint64) *Service {
	return &Service{tx: tx, reader: reader, contract: contract, chainID: chainID}
}

// StakeStatus reports the flexible-stake flow.
func (s *Service) StakeStatus() FlowStatus { return s.stakeFlow.Status() }

// StakeLockedStatus reports the locked-stake flow.
func (s *Service) StakeLockedStatus() FlowStatus { return s.stakeLockedFlow.Status() }

// UnstakeLockedStatus reports the locked-unstake flow.
func (s *Service) UnstakeLockedStatus() FlowStatus { return s.unstakeLockedFlow.Status() }

// Overview fetches the contract-level staking stats. simulatedAmount is the
// stake size the contract quotes APRs against.
func (s *Service) Overview(ctx context.Context, simulatedAmount *big.Int) (chain.StakingOverview, error) {
	return s.reader.Overview(ctx, simulatedAmount)
}

// Stake opens a flexible position by sending amount as transaction value.
func (s *Service) Stake(ctx context.Context, amount *big.Int) (common.Hash, error) {
	if err := s.stakeFlow.begin(); err != nil {
		return common.Hash{}, err
	}
	if err := s.preflight(ctx, amount); err != nil {
		return common.Hash{}, s.stakeFlow.fail(err)
	}

	slog.Info("submitting flexible stake", "amount", amount.String())
	return s.stakeFlow.run(ctx, s.tx, func(ctx context.Context) (common.Hash, error) {
		return s.tx.WriteContract(ctx, s.contract, &chain.StakingABI, "stake", amount)
	})
}

// StakeLocked opens a locked position of the given class, sending amount as
// transaction value.
func (s *Service) StakeLocked(ctx context.Context, amount *big.Int, class events.StakeClass) (common.Hash, error) {
	if err := s.stakeLockedFlow.begin(); err != nil {
		return common.Hash{}, err
	}
	if class == events.ClassFlexible {
		return common.Hash{}, s.stakeLockedFlow.fail(ErrNotLockedClass)
	}
	if err := s.preflight(ctx, amount); err != nil {
		return common.Hash{}, s.stakeLockedFlow.fail(err)
	}

	slog.Info("submitting locked stake", "amount", amount.String(), "class", class.String())
	return s.stakeLockedFlow.run(ctx, s.tx, func(ctx context.Context) (common.Hash, error) {
		return s.tx.WriteContract(ctx, s.contract, &chain.StakingABI, "stakeLocked", amount, uint8(class))
	})
}

// UnstakeLocked closes a locked position by stake id.
func (s *Service) UnstakeLocked(ctx context.Context, stakeID *big.Int) (common.Hash, error) {
	if err := s.unstakeLockedFlow.begin(); err != nil {
		return common.Hash{}, err
	}
	if err := s.ensureChain(ctx); err != nil {
		return common.Hash{}, s.unstakeLockedFlow.fail(err)
	}

	slog.Info("submitting locked unstake", "stake_id", stakeID.String())
	return s.unstakeLockedFlow.run(ctx, s.tx, func(ctx context.Context) (common.Hash, error) {
		return s.tx.WriteContract(ctx, s.contract, &chain.StakingABI, "unstakeLocked", nil, stakeID)
	})
}

// preflight runs the shared stake preconditions: signer present, right chain,
// amount at or above the contract minimum.
func (s *Service) preflight(ctx context.Context, amount *big.Int) error {
	if err := s.ensureChain(ctx); err != nil {
		return err
	}

	overview, err := s.reader.Overview(ctx, amount)
	if err != nil {
		return fmt.Errorf("read staking overview: %w", err)
	}
	if amount.Cmp(overview.MinStakeAmount) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrBelowMinimum, amount, overview.MinStakeAmount)
	}
	return nil
}

func (s *Service) ensureChain(ctx context.Context) error {
	if !s.tx.Connected() {
		return ErrNotConnected
	}
	if s.tx.ChainID() != s.chainID {
		if err := s.tx.SwitchChain(ctx, s.chainID); err != nil {
			return fmt.Errorf("switch chain: %w", err)
		}
	}
	return nil
}
