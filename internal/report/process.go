// Package report turns fetched event sets into export artifacts: processed
// active-stake reports with earned and projected rewards, monthly/yearly
// reward summaries, and unstake-reward reconciliation sheets.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/hashkey-chain/hodlium/internal/chain"
	"github.com/hashkey-chain/hodlium/internal/events"
	"github.com/hashkey-chain/hodlium/internal/export"
	"github.com/hashkey-chain/hodlium/internal/rewards"
)

// contractReadLimit bounds concurrent per-record contract reads.
const contractReadLimit = 8

// ProcessedStake is one active position enriched with its earned reward from
// the contract and the linear projection to maturity. All amounts are exact
// base-unit strings.
type ProcessedStake struct {
	User                     string `json:"user"`
	HskAmount                string `json:"hskAmount"`
	SharesAmount             string `json:"sharesAmount"`
	StakeType                uint8  `json:"stakeType"`
	LockEndTime              string `json:"lockEndTime"`
	LockEndMonth             string `json:"lockEndMonth"`
	StakeID                  string `json:"stakeId"`
	BlockNumber              string `json:"blockNumber"`
	TransactionHash          string `json:"transactionHash"`
	EarnedReward             string `json:"earnedReward"`
	EstimatedRemainingReward string `json:"estimatedRemainingReward"`
	TotalEstimatedReward     string `json:"totalEstimatedReward"`
	ProcessingError          string `json:"processingError,omitempty"`
}

// stakeReader is the staking-contract surface the report generator needs.
type stakeReader interface {
	StakeReward(ctx context.Context, account common.Address, stakeID *big.Int) (chain.StakeRewardInfo, error)
	LockedStakeInfo(ctx context.Context, account common.Address, stakeID *big.Int) (chain.LockedStakeInfo, error)
	FlexibleStakeInfo(ctx context.Context, account common.Address, stakeID *big.Int) (chain.FlexibleStakeInfo, error)
}

// Generator builds report artifacts from event sets and contract reads.
type Generator struct {
	staking   stakeReader
	estimator *rewards.Estimator
}

// NewGenerator builds a Generator over the staking read surface.
func NewGenerator(staking stakeReader, estimator *rewards.Estimator) *Generator {
	return &Generator{staking: staking, estimator: estimator}
}

// ProcessStakes enriches each active position with its contract-reported
// earned reward and the estimated remainder. A failed read zeroes the record
// and notes the error; it never drops the row or fails the batch.
func (g *Generator) ProcessStakes(ctx context.Context, active []events.StakeRecord) []ProcessedStake {
	out := make([]ProcessedStake, len(active))

	grp, gCtx := errgroup.WithContext(ctx)
	grp.SetLimit(contractReadLimit)
	for i, rec := range active {
		i, rec := i, rec
		grp.Go(func() error {
			out[i] = g.processOne(gCtx, rec)
			return nil
		})
	}
	grp.Wait() // goroutines never return errors

	return out
}

func (g *Generator) processOne(ctx context.Context, rec events.StakeRecord) ProcessedStake {
	p := ProcessedStake{
		User:                     rec.Account.Hex(),
		HskAmount:                export.BaseUnits(rec.Principal),
		SharesAmount:             export.BaseUnits(rec.Shares),
		StakeType:                uint8(rec.Class),
		LockEndTime:              export.BaseUnits(rec.LockEndTime),
		LockEndMonth:             rec.LockEndMonth,
		StakeID:                  export.BaseUnits(rec.StakeID),
		BlockNumber:              fmt.Sprintf("%d", rec.BlockNumber),
		TransactionHash:          rec.TxHash.Hex(),
		EarnedReward:             "0",
		EstimatedRemainingReward: "0",
		TotalEstimatedReward:     "0",
	}

	info, err := g.staking.StakeReward(ctx, rec.Account, rec.StakeID)
	if err != nil {
		slog.Warn("stake reward read failed, zeroing record",
			"account", p.User, "stake_id", p.StakeID, "err", err)
		p.ProcessingError = err.Error()
		return p
	}

	est := g.estimator.Estimate(rec)
	total := new(big.Int).Add(info.Reward, est.Reward)

	p.EarnedReward = info.Reward.String()
	p.EstimatedRemainingReward = est.Reward.String()
	p.TotalEstimatedReward = total.String()
	return p
}

// UnstakeRewards enriches closing events with contract state for the
// reconciliation sheets. Locked rows that fail to read keep a zero reward;
// flexible rows that fail to read are dropped.
func (g *Generator) UnstakeRewards(ctx context.Context, set *events.Set) ([]export.LockedUnstakeRow, []export.FlexibleUnstakeRow) {
	var (
		mu       sync.Mutex
		locked   = make([]export.LockedUnstakeRow, len(set.Unstakes))
		flexible []export.FlexibleUnstakeRow
	)

	grp, gCtx := errgroup.WithContext(ctx)
	grp.SetLimit(contractReadLimit)

	for i, ev := range set.Unstakes {
		i, ev := i, ev
		grp.Go(func() error {
			row := export.LockedUnstakeRow{
				User:        ev.Account.Hex(),
				HskAmount:   export.EtherNumber(ev.HskAmount),
				StakeID:     ev.StakeID.String(),
				BlockNumber: fmt.Sprintf("%d", ev.BlockNumber),
				TxHash:      ev.TxHash.Hex(),
			}
			info, err := g.staking.LockedStakeInfo(gCtx, ev.Account, ev.StakeID)
			if err != nil {
				slog.Warn("locked stake info read failed",
					"stake_id", ev.StakeID.String(), "err", err)
			} else {
				// Reward is the amount paid out over the original principal.
				reward := new(big.Int).Sub(ev.HskAmount, info.HskAmount)
				if reward.Sign() < 0 {
					reward.SetInt64(0)
				}
				row.Reward = export.EtherNumber(reward)
			}
			locked[i] = row
			return nil
		})
	}

	for _, ev := range set.FlexibleUnstakes {
		ev := ev
		grp.Go(func() error {
			info, err := g.staking.FlexibleStakeInfo(gCtx, ev.Account, ev.StakeID)
			if err != nil {
				slog.Warn("flexible stake info read failed",
					"stake_id", ev.StakeID.String(), "err", err)
				return nil
			}

			reward := new(big.Int).Sub(info.CurrentHskValue, info.HskAmount)
			if reward.Sign() < 0 {
				reward.SetInt64(0)
			}

			mu.Lock()
			flexible = append(flexible, export.FlexibleUnstakeRow{
				User:             ev.Account.Hex(),
				HskAmount:        export.EtherNumber(info.HskAmount),
				StakeID:          ev.StakeID.String(),
				RequestBlock:     fmt.Sprintf("%d", ev.BlockNumber),
				TxHash:           ev.TxHash.Hex(),
				CalculatedReward: export.EtherNumber(reward),
				ClaimableBlock:   info.ClaimableBlock.String(),
			})
			mu.Unlock()
			return nil
		})
	}

	grp.Wait()
	return locked, flexible
}
