package rewards

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashkey-chain/hodlium/internal/events"
)

var testAccount = common.HexToAddress("0x1111111111111111111111111111111111111111")

// hsk converts whole tokens to base units (18 decimals).
func hsk(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func fixedEstimator(now time.Time) *Estimator {
	e := NewEstimator()
	e.now = func() time.Time { return now }
	return e
}

func lockedPosition(class events.StakeClass, principal *big.Int, lockEnd time.Time) events.StakeRecord {
	return events.StakeRecord{
		Account:      testAccount,
		StakeID:      big.NewInt(1),
		Principal:    principal,
		Class:        class,
		LockEndTime:  big.NewInt(lockEnd.Unix()),
		LockEndMonth: lockEnd.UTC().Format("2006-01"),
	}
}

func TestEstimateThirtyDayPosition(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	pos := lockedPosition(events.ClassLocked30, hsk(1000), now.Add(15*24*time.Hour))

	est := fixedEstimator(now).Estimate(pos)

	assert.Equal(t, int64(41), est.APRBps)
	assert.Equal(t, int64(15*24*60*60), est.SecondsRemaining)
	// 1000e18 * 41 * 1296000 / (10000 * 31536000), floored.
	assert.Equal(t, "168493150684931506", est.Reward.String())
}

func TestEstimateFullYearAt365Class(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pos := lockedPosition(events.ClassLocked365, hsk(100), now.Add(365*24*time.Hour))

	est := fixedEstimator(now).Estimate(pos)

	// A full year remaining collapses to principal * bps / 10000: 4.95 HSK.
	assert.Equal(t, "4950000000000000000", est.Reward.String())
}

func TestEstimateMaturedPositionIsZero(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	pos := lockedPosition(events.ClassLocked90, hsk(500), now.Add(-time.Hour))

	est := fixedEstimator(now).Estimate(pos)

	assert.Zero(t, est.SecondsRemaining)
	assert.Equal(t, "0", est.Reward.String())
}

func TestEstimateFlexibleIsZero(t *testing.T) {
	now := time.Now()
	pos := events.StakeRecord{
		Account:   testAccount,
		StakeID:   big.NewInt(2),
		Principal: hsk(1000),
		Class:     events.ClassFlexible,
	}

	est := fixedEstimator(now).Estimate(pos)

	assert.Zero(t, est.APRBps)
	assert.Equal(t, "0", est.Reward.String())
}

func TestEstimateAllPreservesOrder(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	positions := []events.StakeRecord{
		lockedPosition(events.ClassLocked365, hsk(1), now.Add(300*24*time.Hour)),
		lockedPosition(events.ClassLocked30, hsk(2), now.Add(10*24*time.Hour)),
	}

	ests := fixedEstimator(now).EstimateAll(positions)

	require.Len(t, ests, 2)
	assert.Equal(t, int64(495), ests[0].APRBps)
	assert.Equal(t, int64(41), ests[1].APRBps)
}

func TestEstimateIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	e := fixedEstimator(now)
	positions := []events.StakeRecord{
		lockedPosition(events.ClassLocked30, hsk(1000), now.Add(15*24*time.Hour)),
		lockedPosition(events.ClassLocked180, hsk(250), now.Add(100*24*time.Hour)),
	}

	first := e.EstimateAll(positions)
	second := e.EstimateAll(positions)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Reward.String(), second[i].Reward.String())
		assert.Equal(t, first[i].SecondsRemaining, second[i].SecondsRemaining)
	}

	// Estimation must not mutate the position's principal in place.
	assert.Equal(t, hsk(1000).String(), positions[0].Principal.String())
	assert.Equal(t, hsk(250).String(), positions[1].Principal.String())
}

func TestSummarizeBucketsByMonthAndYear(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	e := fixedEstimator(now)

	ests := e.EstimateAll([]events.StakeRecord{
		lockedPosition(events.ClassLocked30, hsk(100), time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)),
		lockedPosition(events.ClassLocked30, hsk(200), time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)),
		lockedPosition(events.ClassLocked365, hsk(300), time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)),
	})

	s := Summarize(ests)

	assert.Equal(t, 3, s.PositionCount)
	assert.Equal(t, hsk(600).String(), s.TotalPrincipal.String())

	require.Len(t, s.Months, 2)
	assert.Equal(t, "2026-02", s.Months[0].Period)
	assert.Equal(t, 2, s.Months[0].Count)
	assert.Equal(t, hsk(300).String(), s.Months[0].Principal.String())
	assert.Equal(t, "2027-01", s.Months[1].Period)

	require.Len(t, s.Years, 2)
	assert.Equal(t, "2026", s.Years[0].Period)
	assert.Equal(t, "2027", s.Years[1].Period)

	// Totals equal the sum of all estimates, bucketed or not.
	total := new(big.Int)
	for _, est := range ests {
		total.Add(total, est.Reward)
	}
	assert.Equal(t, total.String(), s.TotalReward.String())
}

func TestSummarizeUnbucketedStillCounts(t *testing.T) {
	flexible := Estimate{
		Position: events.StakeRecord{Principal: hsk(50), Class: events.ClassFlexible},
		Reward:   new(big.Int),
	}

	s := Summarize([]Estimate{flexible})

	assert.Equal(t, 1, s.PositionCount)
	assert.Equal(t, hsk(50).String(), s.TotalPrincipal.String())
	assert.Empty(t, s.Months)
	assert.Empty(t, s.Years)
}
