// Package events fetches staking contract logs in bounded chunks, decodes
// them into typed records, and reconciles stake against unstake events to
// derive the currently open position set.
package events

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// StakeClass discriminates lock durations. Values match the contract's
// StakeType enum, so the numeric class decoded from a log can be used as-is.
type StakeClass uint8

const (
	ClassLocked30 StakeClass = iota
	ClassLocked90
	ClassLocked180
	ClassLocked365
	ClassFlexible
)

// String returns the human-readable class name used in exports and logs.
func (c StakeClass) String() string {
	switch c {
	case ClassLocked30:
		return "30d"
	case ClassLocked90:
		return "90d"
	case ClassLocked180:
		return "180d"
	case ClassLocked365:
		return "365d"
	case ClassFlexible:
		return "flexible"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// PeriodDays returns the lock commitment in days; zero for flexible.
func (c StakeClass) PeriodDays() int64 {
	switch c {
	case ClassLocked30:
		return 30
	case ClassLocked90:
		return 90
	case ClassLocked180:
		return 180
	case ClassLocked365:
		return 365
	default:
		return 0
	}
}

// Kind identifies a contract event type the fetcher knows how to query.
type Kind string

const (
	KindStake                  Kind = "Stake"
	KindUnstake                Kind = "Unstake"
	KindRequestUnstakeFlexible Kind = "RequestUnstakeFlexible"
	KindRewardsAdded           Kind = "RewardsAdded"
	KindEmergencyWithdraw      Kind = "EmergencyWithdraw"
)

// StakeRecord is a decoded Stake event. Immutable once constructed; a
// re-fetch supersedes it, nothing mutates it in place.
type StakeRecord struct {
	Account      common.Address
	StakeID      *big.Int
	Principal    *big.Int // hskAmount in base units
	Shares       *big.Int
	Class        StakeClass
	LockEndTime  *big.Int // unix seconds, zero for flexible
	LockEndMonth string   // UTC YYYY-MM derived from LockEndTime at creation
	BlockNumber  uint64
	TxHash       common.Hash
}

// Key returns the identity key used for reconciliation:
// lowercase(account)-stakeId-namespace. Stake ids are only unique within the
// locked vs. flexible namespace, so the class namespace is part of the key.
func (r StakeRecord) Key() string {
	return positionKey(r.Account, r.StakeID, r.Class == ClassFlexible)
}

// UnstakeRecord is a decoded Unstake event, used purely as a closing signal
// for locked positions.
type UnstakeRecord struct {
	Account           common.Address
	StakeID           *big.Int
	Shares            *big.Int
	HskAmount         *big.Int // amount returned to the staker
	IsEarlyWithdrawal bool
	Penalty           *big.Int
	BlockNumber       uint64
	TxHash            common.Hash
}

// Key returns the locked-namespace identity key this record closes.
func (r UnstakeRecord) Key() string {
	return positionKey(r.Account, r.StakeID, false)
}

// FlexibleUnstakeRecord is a decoded RequestUnstakeFlexible event, the
// closing signal for flexible positions.
type FlexibleUnstakeRecord struct {
	Account        common.Address
	StakeID        *big.Int
	HskAmount      *big.Int
	ClaimableBlock *big.Int
	BlockNumber    uint64
	TxHash         common.Hash
}

// Key returns the flexible-namespace identity key this record closes.
func (r FlexibleUnstakeRecord) Key() string {
	return positionKey(r.Account, r.StakeID, true)
}

// RewardsAddedRecord is a decoded RewardsAdded event.
type RewardsAddedRecord struct {
	Amount      *big.Int
	From        common.Address
	BlockNumber uint64
	TxHash      common.Hash
}

// EmergencyWithdrawRecord is a decoded EmergencyWithdraw event.
type EmergencyWithdrawRecord struct {
	Account     common.Address
	Shares      *big.Int
	HskAmount   *big.Int
	BlockNumber uint64
	TxHash      common.Hash
}

// Set holds the decoded output of one fetch session, each slice sorted by
// descending block number after the final chunk completes.
type Set struct {
	Stakes             []StakeRecord
	Unstakes           []UnstakeRecord
	FlexibleUnstakes   []FlexibleUnstakeRecord
	RewardsAdded       []RewardsAddedRecord
	EmergencyWithdraws []EmergencyWithdrawRecord
}

func positionKey(account common.Address, stakeID *big.Int, flexible bool) string {
	ns := "locked"
	if flexible {
		ns = "flexible"
	}
	return strings.ToLower(account.Hex()) + "-" + stakeID.String() + "-" + ns
}

// lockEndMonth formats a unix-seconds lock end as UTC YYYY-MM.
func lockEndMonth(lockEndTime *big.Int) string {
	if lockEndTime == nil || lockEndTime.Sign() == 0 {
		return ""
	}
	return time.Unix(lockEndTime.Int64(), 0).UTC().Format("2006-01")
}
