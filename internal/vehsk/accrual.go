// Package vehsk computes vote-escrow accrual for staking positions and
// drives the mint transaction that claims it. Accrual here is a client-side
// projection; getMintableAmount on the contract remains the authoritative
// claimable figure.
package vehsk

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/hashkey-chain/hodlium/internal/chain"
)

// Accrual ratios per day, scaled by 1e8 and floored. The unscaled values are
// multiplier/365: flexible 1.0, 30d 1.1, 90d 1.5, 180d 1.8, 365d 2.0.
const (
	ratioFlexible = 273972
	ratioLock30   = 301369
	ratioLock90   = 410958
	ratioLock180  = 493150
	ratioLock365  = 547945

	rateScale        = 100_000_000
	secondsPerDay    = 86400
	blockTimeSeconds = 2
	flexibleCapDays  = 14

	// positionReadLimit bounds concurrent per-position contract reads.
	positionReadLimit = 8
)

// Accrual is the projected vote-escrow balance for one account.
type Accrual struct {
	Total     *big.Int
	Locked    *big.Int
	Flexible  *big.Int
	DailyRate *big.Int // accrual per day across currently active positions
}

// positionReader is the staking-contract surface the calculator needs.
type positionReader interface {
	LockedStakeCount(ctx context.Context, account common.Address) (uint64, error)
	FlexibleStakeCount(ctx context.Context, account common.Address) (uint64, error)
	LockedStakeInfo(ctx context.Context, account common.Address, stakeID *big.Int) (chain.LockedStakeInfo, error)
	FlexibleStakeInfo(ctx context.Context, account common.Address, stakeID *big.Int) (chain.FlexibleStakeInfo, error)
}

type headReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Calculator projects accrued vote-escrow balances from on-chain position
// state. Individual position reads that fail are skipped with a warning so
// one bad slot cannot hide the rest of the account.
type Calculator struct {
	staking positionReader
	head    headReader
	now     func() time.Time
}

// NewCalculator builds a Calculator over the given read surfaces.
func NewCalculator(staking positionReader, head headReader) *Calculator {
	return &Calculator{staking: staking, head: head, now: time.Now}
}

// Accrue projects the account's accrued balance across every stake slot.
func (c *Calculator) Accrue(ctx context.Context, account common.Address) (Accrual, error) {
	var lockedCount, flexibleCount uint64

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lockedCount, err = c.staking.LockedStakeCount(gCtx, account)
		return err
	})
	g.Go(func() error {
		var err error
		flexibleCount, err = c.staking.FlexibleStakeCount(gCtx, account)
		return err
	})
	if err := g.Wait(); err != nil {
		return Accrual{}, err
	}

	acc := Accrual{
		Total:     new(big.Int),
		Locked:    new(big.Int),
		Flexible:  new(big.Int),
		DailyRate: new(big.Int),
	}

	if err := c.accrueLocked(ctx, account, lockedCount, &acc); err != nil {
		return Accrual{}, err
	}
	if err := c.accrueFlexible(ctx, account, flexibleCount, &acc); err != nil {
		return Accrual{}, err
	}

	acc.Total.Add(acc.Locked, acc.Flexible)
	return acc, nil
}

func (c *Calculator) accrueLocked(ctx context.Context, account common.Address, count uint64, acc *Accrual) error {
	if count == 0 {
		return nil
	}
	now := c.now().Unix()

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(positionReadLimit)
	for i := uint64(0); i < count; i++ {
		i := i
		g.Go(func() error {
			info, err := c.staking.LockedStakeInfo(gCtx, account, new(big.Int).SetUint64(i))
			if err != nil {
				slog.Warn("skipping unreadable locked stake",
					"account", account.Hex(), "stake_id", i, "err", err)
				return nil
			}
			if info.IsWithdrawn {
				return nil
			}

			daily, position, active := lockedPositionAccrual(info, now)
			mu.Lock()
			acc.Locked.Add(acc.Locked, position)
			if active {
				acc.DailyRate.Add(acc.DailyRate, daily)
			}
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// lockedPositionAccrual computes (dailyAmount, accruedTotal, stillActive) for
// one locked slot.
//
// The lock class is re-derived from time remaining rather than trusted from
// the stake event: a position past its lock end, or unlocked early, falls
// back to the 30-day schedule. Elapsed time counts from the inferred lock
// start (lockEnd minus the period) and accrual stops at the period length.
func lockedPositionAccrual(info chain.LockedStakeInfo, now int64) (daily, position *big.Int, active bool) {
	lockEnd := info.LockEndTime.Int64()
	active = info.IsLocked && lockEnd > now

	ratio, periodDays := int64(ratioLock30), int64(30)
	if active {
		ratio, periodDays = lockBucket((lockEnd - now) / secondsPerDay)
	}

	start := lockEnd - periodDays*secondsPerDay
	elapsedDays := int64(0)
	if now > start {
		elapsedDays = (now - start) / secondsPerDay
	}
	if elapsedDays > periodDays {
		elapsedDays = periodDays
	}

	daily = dailyAmount(info.HskAmount, ratio)
	position = new(big.Int).Mul(daily, big.NewInt(elapsedDays))
	return daily, position, active
}

// lockBucket maps days remaining to the accrual schedule of the narrowest
// lock class the position could still belong to.
func lockBucket(remainingDays int64) (ratio, periodDays int64) {
	switch {
	case remainingDays > 180:
		return ratioLock365, 365
	case remainingDays > 90:
		return ratioLock180, 180
	case remainingDays > 30:
		return ratioLock90, 90
	default:
		return ratioLock30, 30
	}
}

func (c *Calculator) accrueFlexible(ctx context.Context, account common.Address, count uint64, acc *Accrual) error {
	if count == 0 {
		return nil
	}

	// One head read serves every flexible slot; block delta times the 2s
	// block interval stands in for wall-clock elapsed time.
	head, err := c.head.BlockNumber(ctx)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(positionReadLimit)
	for i := uint64(0); i < count; i++ {
		i := i
		g.Go(func() error {
			info, err := c.staking.FlexibleStakeInfo(gCtx, account, new(big.Int).SetUint64(i))
			if err != nil {
				slog.Warn("skipping unreadable flexible stake",
					"account", account.Hex(), "stake_id", i, "err", err)
				return nil
			}
			if info.Status != chain.FlexibleActive {
				return nil
			}

			elapsedDays := int64(0)
			if stakeBlock := info.StakeBlock.Uint64(); head > stakeBlock {
				elapsedDays = int64(head-stakeBlock) * blockTimeSeconds / secondsPerDay
			}
			if elapsedDays > flexibleCapDays {
				elapsedDays = flexibleCapDays
			}

			daily := dailyAmount(info.HskAmount, ratioFlexible)
			position := new(big.Int).Mul(daily, big.NewInt(elapsedDays))

			mu.Lock()
			acc.Flexible.Add(acc.Flexible, position)
			acc.DailyRate.Add(acc.DailyRate, daily)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// dailyAmount is principal * scaledRatio / 1e8, floored.
func dailyAmount(principal *big.Int, scaledRatio int64) *big.Int {
	daily := new(big.Int).Mul(principal, big.NewInt(scaledRatio))
	return daily.Quo(daily, big.NewInt(rateScale))
}
