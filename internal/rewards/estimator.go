// Package rewards projects interest for open locked positions. Projections
// are advisory: the contract's getStakeReward view stays authoritative for
// settled amounts, this package only answers "what will this earn if held to
// maturity from now".
package rewards

import (
	"math/big"
	"time"

	"github.com/hashkey-chain/hodlium/internal/events"
)

// Default annual rates in basis points per lock class. These mirror the
// published staking schedule; flexible positions carry no fixed rate and are
// never estimated here.
var defaultAPRBps = map[events.StakeClass]int64{
	events.ClassLocked30:  41,
	events.ClassLocked90:  135,
	events.ClassLocked180: 245,
	events.ClassLocked365: 495,
}

const (
	bpsDenominator = 10000
	secondsPerYear = 365 * 24 * 60 * 60
)

// Estimate is a projected reward for one open locked position.
type Estimate struct {
	Position         events.StakeRecord
	APRBps           int64
	SecondsRemaining int64
	Reward           *big.Int // base units, floor-rounded
}

// Estimator computes maturity projections. The zero value is not usable;
// construct with NewEstimator.
type Estimator struct {
	aprBps map[events.StakeClass]int64
	now    func() time.Time
}

// NewEstimator returns an Estimator using the published APR schedule and the
// wall clock.
func NewEstimator() *Estimator {
	return &Estimator{aprBps: defaultAPRBps, now: time.Now}
}

// Estimate projects the remaining reward for one position:
//
//	principal * aprBps * secondsRemaining / (10000 * secondsPerYear)
//
// computed in integer arithmetic with a single final floor division, so no
// intermediate precision is lost. Matured positions project zero rather than
// a negative amount.
func (e *Estimator) Estimate(pos events.StakeRecord) Estimate {
	apr := e.aprBps[pos.Class]
	est := Estimate{
		Position: pos,
		APRBps:   apr,
		Reward:   new(big.Int),
	}
	if apr == 0 || pos.Principal == nil || pos.LockEndTime == nil {
		return est
	}

	remaining := pos.LockEndTime.Int64() - e.now().Unix()
	if remaining <= 0 {
		return est
	}
	est.SecondsRemaining = remaining

	reward := new(big.Int).Mul(pos.Principal, big.NewInt(apr))
	reward.Mul(reward, big.NewInt(remaining))
	reward.Quo(reward, big.NewInt(bpsDenominator*secondsPerYear))
	est.Reward = reward
	return est
}

// EstimateAll projects every position, preserving input order.
func (e *Estimator) EstimateAll(positions []events.StakeRecord) []Estimate {
	ests := make([]Estimate, 0, len(positions))
	for _, pos := range positions {
		ests = append(ests, e.Estimate(pos))
	}
	return ests
}
