package events

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashkey-chain/hodlium/internal/chain"
)

func TestNormalizeStake(t *testing.T) {
	rec, err := normalizeStake(stakeLog(t, testAccount, 42, ClassLocked90, 4200000))
	require.NoError(t, err)

	assert.Equal(t, testAccount, rec.Account)
	assert.Equal(t, "42", rec.StakeID.String())
	assert.Equal(t, "1000", rec.Principal.String())
	assert.Equal(t, "1000", rec.Shares.String())
	assert.Equal(t, ClassLocked90, rec.Class)
	assert.Equal(t, "1767225600", rec.LockEndTime.String())
	// 1767225600 is 2026-01-01 UTC.
	assert.Equal(t, "2026-01", rec.LockEndMonth)
	assert.Equal(t, uint64(4200000), rec.BlockNumber)
}

func TestNormalizeStakeFlexibleHasNoLockMonth(t *testing.T) {
	log := stakeLog(t, testAccount, 1, ClassFlexible, 100)

	ev := chain.StakingABI.Events["Stake"]
	data, err := ev.Inputs.NonIndexed().Pack(
		big.NewInt(1000), big.NewInt(1000), uint8(ClassFlexible), big.NewInt(0), big.NewInt(1),
	)
	require.NoError(t, err)
	log.Data = data

	rec, err := normalizeStake(log)
	require.NoError(t, err)
	assert.Equal(t, "", rec.LockEndMonth)
	assert.Equal(t, int64(0), rec.Class.PeriodDays())
}

func TestNormalizeStakeRejectsMissingTopics(t *testing.T) {
	log := stakeLog(t, testAccount, 1, ClassLocked30, 100)
	log.Topics = log.Topics[:1]

	_, err := normalizeStake(log)
	require.Error(t, err)
}

func TestNormalizeUnstake(t *testing.T) {
	rec, err := normalizeUnstake(unstakeLog(t, testAccount, 9, 77))
	require.NoError(t, err)

	assert.Equal(t, testAccount, rec.Account)
	assert.Equal(t, "9", rec.StakeID.String())
	assert.Equal(t, "500", rec.Shares.String())
	assert.Equal(t, "510", rec.HskAmount.String())
	assert.False(t, rec.IsEarlyWithdrawal)
	assert.Equal(t, "0", rec.Penalty.String())
}

func TestNormalizeFlexibleUnstakeReadsIndexedStakeID(t *testing.T) {
	rec, err := normalizeFlexibleUnstake(flexibleUnstakeLog(t, testAccount, 13, 500))
	require.NoError(t, err)

	assert.Equal(t, testAccount, rec.Account)
	assert.Equal(t, "13", rec.StakeID.String())
	assert.Equal(t, "900", rec.HskAmount.String())
	assert.Equal(t, "550", rec.ClaimableBlock.String())
}

func TestNormalizeRejectsTruncatedData(t *testing.T) {
	log := unstakeLog(t, testAccount, 1, 10)
	log.Data = log.Data[:31]

	_, err := normalizeUnstake(log)
	require.Error(t, err)
}

func TestRecordKeysShareNamespaceFormat(t *testing.T) {
	stake := stakeRecord(testAccount, 4, ClassLocked30, 10)
	unstake := UnstakeRecord{Account: testAccount, StakeID: big.NewInt(4)}
	assert.Equal(t, stake.Key(), unstake.Key())

	flexStake := stakeRecord(testAccount, 4, ClassFlexible, 10)
	flexUnstake := FlexibleUnstakeRecord{Account: testAccount, StakeID: big.NewInt(4)}
	assert.Equal(t, flexStake.Key(), flexUnstake.Key())

	assert.NotEqual(t, stake.Key(), flexStake.Key())
}

func TestEmergencyWithdrawLogsDecode(t *testing.T) {
	ev := chain.StakingABI.Events["EmergencyWithdraw"]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(333), big.NewInt(340))
	require.NoError(t, err)

	rec, err := normalizeEmergencyWithdraw(types.Log{
		Topics:      []common.Hash{ev.ID, common.BytesToHash(testAccount.Bytes())},
		Data:        data,
		BlockNumber: 88,
	})
	require.NoError(t, err)
	assert.Equal(t, "333", rec.Shares.String())
	assert.Equal(t, "340", rec.HskAmount.String())
	assert.Equal(t, testAccount, rec.Account)
}
