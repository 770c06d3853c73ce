package vehsk

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashkey-chain/hodlium/internal/chain"
)

var testAccount = common.HexToAddress("0x1111111111111111111111111111111111111111")

func hsk(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

type fakePositions struct {
	locked   []chain.LockedStakeInfo
	flexible []chain.FlexibleStakeInfo
	lockdErr map[uint64]error
	flexErr  map[uint64]error
	head     uint64
}

func (f *fakePositions) LockedStakeCount(context.Context, common.Address) (uint64, error) {
	return uint64(len(f.locked)), nil
}

func (f *fakePositions) FlexibleStakeCount(context.Context, common.Address) (uint64, error) {
	return uint64(len(f.flexible)), nil
}

func (f *fakePositions) LockedStakeInfo(_ context.Context, _ common.Address, id *big.Int) (chain.LockedStakeInfo, error) {
	if err := f.lockdErr[id.Uint64()]; err != nil {
		return chain.LockedStakeInfo{}, err
	}
	return f.locked[id.Uint64()], nil
}

func (f *fakePositions) FlexibleStakeInfo(_ context.Context, _ common.Address, id *big.Int) (chain.FlexibleStakeInfo, error) {
	if err := f.flexErr[id.Uint64()]; err != nil {
		return chain.FlexibleStakeInfo{}, err
	}
	return f.flexible[id.Uint64()], nil
}

func (f *fakePositions) BlockNumber(context.Context) (uint64, error) {
	return f.head, nil
}

func fixedCalculator(f *fakePositions, now time.Time) *Calculator {
	c := NewCalculator(f, f)
	c.now = func() time.Time { return now }
	return c
}

func TestLockBucketBoundaries(t *testing.T) {
	tests := []struct {
		remaining  int64
		wantRatio  int64
		wantPeriod int64
	}{
		{365, ratioLock365, 365},
		{181, ratioLock365, 365},
		{180, ratioLock180, 180},
		{91, ratioLock180, 180},
		{90, ratioLock90, 90},
		{31, ratioLock90, 90},
		{30, ratioLock30, 30},
		{1, ratioLock30, 30},
		{0, ratioLock30, 30},
	}
	for _, tt := range tests {
		ratio, period := lockBucket(tt.remaining)
		assert.Equal(t, tt.wantRatio, ratio, "remaining=%d", tt.remaining)
		assert.Equal(t, tt.wantPeriod, period, "remaining=%d", tt.remaining)
	}
}

func TestAccrueLockedPosition(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// 30-day lock opened 10 days ago: 20 days remaining, 10 days accrued.
	lockEnd := now.Add(20 * 24 * time.Hour)

	f := &fakePositions{
		locked: []chain.LockedStakeInfo{{
			HskAmount:   hsk(1000),
			LockEndTime: big.NewInt(lockEnd.Unix()),
			IsLocked:    true,
		}},
	}

	acc, err := fixedCalculator(f, now).Accrue(context.Background(), testAccount)
	require.NoError(t, err)

	// daily = 1000e18 * 301369 / 1e8, accrued = daily * 10.
	daily := dailyAmount(hsk(1000), ratioLock30)
	want := new(big.Int).Mul(daily, big.NewInt(10))
	assert.Equal(t, want.String(), acc.Locked.String())
	assert.Equal(t, daily.String(), acc.DailyRate.String())
	assert.Equal(t, want.String(), acc.Total.String())
	assert.Equal(t, "0", acc.Flexible.String())
}

func TestAccrueLockedStopsAtPeriod(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// Matured but never withdrawn: falls back to the 30-day schedule and
	// accrues at most 30 days.
	lockEnd := now.Add(-100 * 24 * time.Hour)

	f := &fakePositions{
		locked: []chain.LockedStakeInfo{{
			HskAmount:   hsk(100),
			LockEndTime: big.NewInt(lockEnd.Unix()),
			IsLocked:    false,
		}},
	}

	acc, err := fixedCalculator(f, now).Accrue(context.Background(), testAccount)
	require.NoError(t, err)

	want := new(big.Int).Mul(dailyAmount(hsk(100), ratioLock30), big.NewInt(30))
	assert.Equal(t, want.String(), acc.Locked.String())
	// Matured positions no longer contribute to the daily rate.
	assert.Equal(t, "0", acc.DailyRate.String())
}

func TestAccrueSkipsWithdrawnLocked(t *testing.T) {
	now := time.Now()
	f := &fakePositions{
		locked: []chain.LockedStakeInfo{{
			HskAmount:   hsk(100),
			LockEndTime: big.NewInt(now.Add(24 * time.Hour).Unix()),
			IsWithdrawn: true,
			IsLocked:    true,
		}},
	}

	acc, err := fixedCalculator(f, now).Accrue(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, "0", acc.Total.String())
}

func TestAccrueFlexiblePosition(t *testing.T) {
	now := time.Now()
	f := &fakePositions{
		head: 100_000,
		flexible: []chain.FlexibleStakeInfo{{
			HskAmount:  hsk(365),
			StakeBlock: big.NewInt(100_000 - 5*secondsPerDay/blockTimeSeconds), // 5 days ago
			Status:     chain.FlexibleActive,
		}},
	}

	acc, err := fixedCalculator(f, now).Accrue(context.Background(), testAccount)
	require.NoError(t, err)

	daily := dailyAmount(hsk(365), ratioFlexible)
	want := new(big.Int).Mul(daily, big.NewInt(5))
	assert.Equal(t, want.String(), acc.Flexible.String())
	assert.Equal(t, daily.String(), acc.DailyRate.String())
}

func TestAccrueFlexibleCapsAtFourteenDays(t *testing.T) {
	now := time.Now()
	f := &fakePositions{
		head: 10_000_000,
		flexible: []chain.FlexibleStakeInfo{{
			HskAmount:  hsk(365),
			StakeBlock: big.NewInt(0), // ancient stake
			Status:     chain.FlexibleActive,
		}},
	}

	acc, err := fixedCalculator(f, now).Accrue(context.Background(), testAccount)
	require.NoError(t, err)

	want := new(big.Int).Mul(dailyAmount(hsk(365), ratioFlexible), big.NewInt(flexibleCapDays))
	assert.Equal(t, want.String(), acc.Flexible.String())
}

func TestAccrueSkipsInactiveFlexible(t *testing.T) {
	now := time.Now()
	f := &fakePositions{
		head: 100_000,
		flexible: []chain.FlexibleStakeInfo{{
			HskAmount:  hsk(100),
			StakeBlock: big.NewInt(1),
			Status:     chain.FlexibleWithdrawing,
		}},
	}

	acc, err := fixedCalculator(f, now).Accrue(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, "0", acc.Total.String())
}

func TestAccrueSkipsUnreadableSlots(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	lockEnd := now.Add(20 * 24 * time.Hour)

	good := chain.LockedStakeInfo{
		HskAmount:   hsk(10),
		LockEndTime: big.NewInt(lockEnd.Unix()),
		IsLocked:    true,
	}
	f := &fakePositions{
		locked:   []chain.LockedStakeInfo{good, good},
		lockdErr: map[uint64]error{1: errors.New("execution reverted")},
	}

	acc, err := fixedCalculator(f, now).Accrue(context.Background(), testAccount)
	require.NoError(t, err, "one bad slot must not fail the account")

	want := new(big.Int).Mul(dailyAmount(hsk(10), ratioLock30), big.NewInt(10))
	assert.Equal(t, want.String(), acc.Locked.String())
}
