package events

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hashkey-chain/hodlium/internal/chain"
)

// normalizeStake decodes a Stake log. The first topic is the event id, the
// second the indexed user address; everything else rides in the data blob.
func normalizeStake(log types.Log) (StakeRecord, error) {
	if len(log.Topics) < 2 {
		return StakeRecord{}, fmt.Errorf("stake log: %d topics", len(log.Topics))
	}

	vals, err := chain.StakingABI.Events["Stake"].Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return StakeRecord{}, fmt.Errorf("unpack stake data: %w", err)
	}
	if len(vals) != 5 {
		return StakeRecord{}, fmt.Errorf("stake log: %d data fields", len(vals))
	}

	lockEnd := vals[3].(*big.Int)
	return StakeRecord{
		Account:      topicAddress(log.Topics[1]),
		Principal:    vals[0].(*big.Int),
		Shares:       vals[1].(*big.Int),
		Class:        StakeClass(vals[2].(uint8)),
		LockEndTime:  lockEnd,
		LockEndMonth: lockEndMonth(lockEnd),
		StakeID:      vals[4].(*big.Int),
		BlockNumber:  log.BlockNumber,
		TxHash:       log.TxHash,
	}, nil
}

func normalizeUnstake(log types.Log) (UnstakeRecord, error) {
	if len(log.Topics) < 2 {
		return UnstakeRecord{}, fmt.Errorf("unstake log: %d topics", len(log.Topics))
	}

	vals, err := chain.StakingABI.Events["Unstake"].Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return UnstakeRecord{}, fmt.Errorf("unpack unstake data: %w", err)
	}
	if len(vals) != 5 {
		return UnstakeRecord{}, fmt.Errorf("unstake log: %d data fields", len(vals))
	}

	return UnstakeRecord{
		Account:           topicAddress(log.Topics[1]),
		Shares:            vals[0].(*big.Int),
		HskAmount:         vals[1].(*big.Int),
		IsEarlyWithdrawal: vals[2].(bool),
		Penalty:           vals[3].(*big.Int),
		StakeID:           vals[4].(*big.Int),
		BlockNumber:       log.BlockNumber,
		TxHash:            log.TxHash,
	}, nil
}

// normalizeFlexibleUnstake decodes a RequestUnstakeFlexible log; both user
// and stakeId are indexed for this event.
func normalizeFlexibleUnstake(log types.Log) (FlexibleUnstakeRecord, error) {
	if len(log.Topics) < 3 {
		return FlexibleUnstakeRecord{}, fmt.Errorf("flexible unstake log: %d topics", len(log.Topics))
	}

	vals, err := chain.StakingABI.Events["RequestUnstakeFlexible"].Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return FlexibleUnstakeRecord{}, fmt.Errorf("unpack flexible unstake data: %w", err)
	}
	if len(vals) != 2 {
		return FlexibleUnstakeRecord{}, fmt.Errorf("flexible unstake log: %d data fields", len(vals))
	}

	return FlexibleUnstakeRecord{
		Account:        topicAddress(log.Topics[1]),
		StakeID:        new(big.Int).SetBytes(log.Topics[2].Bytes()),
		HskAmount:      vals[0].(*big.Int),
		ClaimableBlock: vals[1].(*big.Int),
		BlockNumber:    log.BlockNumber,
		TxHash:         log.TxHash,
	}, nil
}

func normalizeRewardsAdded(log types.Log) (RewardsAddedRecord, error) {
	if len(log.Topics) < 2 {
		return RewardsAddedRecord{}, fmt.Errorf("rewards added log: %d topics", len(log.Topics))
	}

	vals, err := chain.StakingABI.Events["RewardsAdded"].Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return RewardsAddedRecord{}, fmt.Errorf("unpack rewards added data: %w", err)
	}
	if len(vals) != 1 {
		return RewardsAddedRecord{}, fmt.Errorf("rewards added log: %d data fields", len(vals))
	}

	return RewardsAddedRecord{
		Amount:      vals[0].(*big.Int),
		From:        topicAddress(log.Topics[1]),
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
	}, nil
}

func normalizeEmergencyWithdraw(log types.Log) (EmergencyWithdrawRecord, error) {
	if len(log.Topics) < 2 {
		return EmergencyWithdrawRecord{}, fmt.Errorf("emergency withdraw log: %d topics", len(log.Topics))
	}

	vals, err := chain.StakingABI.Events["EmergencyWithdraw"].Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return EmergencyWithdrawRecord{}, fmt.Errorf("unpack emergency withdraw data: %w", err)
	}
	if len(vals) != 2 {
		return EmergencyWithdrawRecord{}, fmt.Errorf("emergency withdraw log: %d data fields", len(vals))
	}

	return EmergencyWithdrawRecord{
		Account:     topicAddress(log.Topics[1]),
		Shares:      vals[0].(*big.Int),
		HskAmount:   vals[1].(*big.Int),
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
	}, nil
}

func topicAddress(t common.Hash) common.Address {
	return common.BytesToAddress(t.Bytes())
}
