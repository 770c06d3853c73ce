package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// FlexibleStakeStatus mirrors the contract's flexible-stake lifecycle enum.
type FlexibleStakeStatus uint8

const (
	FlexibleActive FlexibleStakeStatus = iota
	FlexibleWithdrawing
	FlexibleWithdrawn
)

// LockedStakeInfo is the result of getLockedStakeInfo.
type LockedStakeInfo struct {
	SharesAmount    *big.Int
	HskAmount       *big.Int
	CurrentHskValue *big.Int
	LockEndTime     *big.Int
	IsWithdrawn     bool
	IsLocked        bool
}

// FlexibleStakeInfo is the result of getFlexibleStakeInfo. StakeBlock is the
// block the position was opened in, used to estimate elapsed time client-side.
type FlexibleStakeInfo struct {
	SharesAmount    *big.Int
	HskAmount       *big.Int
	CurrentHskValue *big.Int
	StakeBlock      *big.Int
	ClaimableBlock  *big.Int
	Status          FlexibleStakeStatus
}

// StakeRewardInfo is the result of getStakeReward. Reward is the contract's
// authoritative accrued reward; the estimator layers projections on top of it,
// never replaces it.
type StakeRewardInfo struct {
	OriginalAmount *big.Int
	Reward         *big.Int
	ActualReward   *big.Int
	TotalValue     *big.Int
}

// StakingOverview bundles the contract-level stats shown on the staking page.
type StakingOverview struct {
	TotalValueLocked *big.Int
	ExchangeRate     *big.Int
	MinStakeAmount   *big.Int
	EstimatedAPRs    []*big.Int
	MaxAPRs          []*big.Int
}

// StakingReader exposes typed reads against the staking contract.
type StakingReader struct {
	caller   Caller
	contract common.Address
}

// NewStakingReader builds a reader bound to the staking contract address.
func NewStakingReader(caller Caller, contract common.Address) *StakingReader {
	return &StakingReader{caller: caller, contract: contract}
}

// Contract returns the staking contract address.
func (r *StakingReader) Contract() common.Address { return r.contract }

// LockedStakeInfo fetches a locked position by (account, stakeId).
func (r *StakingReader) LockedStakeInfo(ctx context.Context, account common.Address, stakeID *big.Int) (LockedStakeInfo, error) {
	vals, err := r.caller.Call(ctx, r.contract, &StakingABI, "getLockedStakeInfo", account, stakeID)
	if err != nil {
		return LockedStakeInfo{}, err
	}
	if len(vals) != 6 {
		return LockedStakeInfo{}, fmt.Errorf("getLockedStakeInfo: %d outputs", len(vals))
	}
	return LockedStakeInfo{
		SharesAmount:    vals[0].(*big.Int),
		HskAmount:       vals[1].(*big.Int),
		CurrentHskValue: vals[2].(*big.Int),
		LockEndTime:     vals[3].(*big.Int),
		IsWithdrawn:     vals[4].(bool),
		IsLocked:        vals[5].(bool),
	}, nil
}

// FlexibleStakeInfo fetches a flexible position by (account, stakeId).
func (r *StakingReader) FlexibleStakeInfo(ctx context.Context, account common.Address, stakeID *big.Int) (FlexibleStakeInfo, error) {
	vals, err := r.caller.Call(ctx, r.contract, &StakingABI, "getFlexibleStakeInfo", account, stakeID)
	if err != nil {
		return FlexibleStakeInfo{}, err
	}
	if len(vals) != 6 {
		return FlexibleStakeInfo{}, fmt.Errorf("getFlexibleStakeInfo: %d outputs", len(vals))
	}
	return FlexibleStakeInfo{
		SharesAmount:    vals[0].(*big.Int),
		HskAmount:       vals[1].(*big.Int),
		CurrentHskValue: vals[2].(*big.Int),
		StakeBlock:      vals[3].(*big.Int),
		ClaimableBlock:  vals[4].(*big.Int),
		Status:          FlexibleStakeStatus(vals[5].(uint8)),
	}, nil
}

// StakeReward fetches the contract's accrued-reward view for a locked stake.
func (r *StakingReader) StakeReward(ctx context.Context, account common.Address, stakeID *big.Int) (StakeRewardInfo, error) {
	vals, err := r.caller.Call(ctx, r.contract, &StakingABI, "getStakeReward", account, stakeID)
	if err != nil {
		return StakeRewardInfo{}, err
	}
	if len(vals) != 4 {
		return StakeRewardInfo{}, fmt.Errorf("getStakeReward: %d outputs", len(vals))
	}
	return StakeRewardInfo{
		OriginalAmount: vals[0].(*big.Int),
		Reward:         vals[1].(*big.Int),
		ActualReward:   vals[2].(*big.Int),
		TotalValue:     vals[3].(*big.Int),
	}, nil
}

// LockedStakeCount returns the number of locked stake slots for an account.
func (r *StakingReader) LockedStakeCount(ctx context.Context, account common.Address) (uint64, error) {
	return r.countCall(ctx, "getUserLockedStakeCount", account)
}

// FlexibleStakeCount returns the number of flexible stake slots for an account.
func (r *StakingReader) FlexibleStakeCount(ctx context.Context, account common.Address) (uint64, error) {
	return r.countCall(ctx, "getUserFlexibleStakeCount", account)
}

func (r *StakingReader) countCall(ctx context.Context, method string, account common.Address) (uint64, error) {
	vals, err := r.caller.Call(ctx, r.contract, &StakingABI, method, account)
	if err != nil {
		return 0, err
	}
	if len(vals) != 1 {
		return 0, fmt.Errorf("%s: %d outputs", method, len(vals))
	}
	return vals[0].(*big.Int).Uint64(), nil
}

// Overview fetches the contract-level staking stats. simulatedAmount is the
// stake size used by the contract to quote APRs.
func (r *StakingReader) Overview(ctx context.Context, simulatedAmount *big.Int) (StakingOverview, error) {
	var out StakingOverview

	tvl, err := r.caller.Call(ctx, r.contract, &StakingABI, "totalValueLocked")
	if err != nil {
		return out, err
	}
	rate, err := r.caller.Call(ctx, r.contract, &StakingABI, "getCurrentExchangeRate")
	if err != nil {
		return out, err
	}
	minStake, err := r.caller.Call(ctx, r.contract, &StakingABI, "minStakeAmount")
	if err != nil {
		return out, err
	}
	aprs, err := r.caller.Call(ctx, r.contract, &StakingABI, "getAllStakingAPRs", simulatedAmount)
	if err != nil {
		return out, err
	}
	if len(aprs) != 2 {
		return out, fmt.Errorf("getAllStakingAPRs: %d outputs", len(aprs))
	}

	out.TotalValueLocked = tvl[0].(*big.Int)
	out.ExchangeRate = rate[0].(*big.Int)
	out.MinStakeAmount = minStake[0].(*big.Int)
	out.EstimatedAPRs = aprs[0].([]*big.Int)
	out.MaxAPRs = aprs[1].([]*big.Int)

	// The contract quotes no flexible estimate; the convention is half the
	// 30-day estimate.
	if len(out.EstimatedAPRs) >= 5 {
		out.EstimatedAPRs[4] = new(big.Int).Div(out.EstimatedAPRs[0], big.NewInt(2))
	}
	return out, nil
}
