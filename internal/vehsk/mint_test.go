package vehsk

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashkey-chain/hodlium/internal/chain"
)

var veHSKContract = common.HexToAddress("0xe1045155ee02e0997E6bB4509D854a306c50D914")

type fakeTxService struct {
	connected     bool
	chainID       uint64
	switchErr     error
	writeHash     common.Hash
	writeErr      error
	receipt       *types.Receipt
	receiptErr    error
	wroteMethod   string
	switchedTo    uint64
	receiptWaited common.Hash
}

func (f *fakeTxService) Connected() bool { return f.connected }

func (f *fakeTxService) ChainID() uint64 { return f.chainID }

func (f *fakeTxService) SwitchChain(_ context.Context, chainID uint64) error {
	f.switchedTo = chainID
	if f.switchErr != nil {
		return f.switchErr
	}
	f.chainID = chainID
	return nil
}

func (f *fakeTxService) WriteContract(_ context.Context, _ common.Address, _ *abi.ABI, method string, _ *big.Int, _ ...any) (common.Hash, error) {
	f.wroteMethod = method
	return f.writeHash, f.writeErr
}

func (f *fakeTxService) WaitForReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.receiptWaited = hash
	return f.receipt, f.receiptErr
}

type fakeMintable struct {
	total *big.Int
	err   error
}

func (f *fakeMintable) MintableAmount(context.Context, common.Address) (chain.MintableAmountInfo, error) {
	if f.err != nil {
		return chain.MintableAmountInfo{}, f.err
	}
	return chain.MintableAmountInfo{
		MintableTotal:      f.total,
		FlexibleMintable:   new(big.Int),
		LockedMintable:     f.total,
		FlexibleStakeCount: new(big.Int),
		LockedStakeCount:   big.NewInt(1),
	}, nil
}

func TestMintHappyPath(t *testing.T) {
	hash := common.HexToHash("0xabc1")
	tx := &fakeTxService{
		connected: true,
		chainID:   177,
		writeHash: hash,
		receipt:   &types.Receipt{Status: types.ReceiptStatusSuccessful},
	}

	refreshed := false
	m := NewMinter(tx, &fakeMintable{total: big.NewInt(100)}, veHSKContract, 177, func() { refreshed = true })

	got, err := m.Mint(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, hash, got)
	assert.Equal(t, "mint", tx.wroteMethod)
	assert.Equal(t, hash, tx.receiptWaited)
	assert.True(t, refreshed, "a confirmed mint must trigger the refresh hook")

	st := m.Status()
	assert.Equal(t, MintSuccess, st.State)
	assert.Equal(t, hash, st.TxHash)
	assert.NoError(t, st.Err)
}

func TestMintRequiresSigner(t *testing.T) {
	m := NewMinter(&fakeTxService{connected: false}, &fakeMintable{total: big.NewInt(1)}, veHSKContract, 177, nil)

	_, err := m.Mint(context.Background(), testAccount)
	require.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, MintFailed, m.Status().State)
	assert.ErrorIs(t, m.Status().Err, ErrNotConnected)
}

func TestMintRejectsEmptyBalance(t *testing.T) {
	tx := &fakeTxService{connected: true, chainID: 177}
	m := NewMinter(tx, &fakeMintable{total: new(big.Int)}, veHSKContract, 177, nil)

	_, err := m.Mint(context.Background(), testAccount)
	require.ErrorIs(t, err, ErrNothingToClaim)
	assert.Empty(t, tx.wroteMethod, "no transaction may be submitted with nothing to claim")
}

func TestMintSwitchesChainWhenNeeded(t *testing.T) {
	tx := &fakeTxService{
		connected: true,
		chainID:   133,
		writeHash: common.HexToHash("0x01"),
		receipt:   &types.Receipt{Status: types.ReceiptStatusSuccessful},
	}
	m := NewMinter(tx, &fakeMintable{total: big.NewInt(5)}, veHSKContract, 177, nil)

	_, err := m.Mint(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(177), tx.switchedTo)
}

func TestMintSurfacesSwitchFailure(t *testing.T) {
	tx := &fakeTxService{
		connected: true,
		chainID:   133,
		switchErr: chain.ErrChainMismatch,
	}
	m := NewMinter(tx, &fakeMintable{total: big.NewInt(5)}, veHSKContract, 177, nil)

	_, err := m.Mint(context.Background(), testAccount)
	require.ErrorIs(t, err, chain.ErrChainMismatch)
	assert.Equal(t, MintFailed, m.Status().State)
}

func TestMintRevertedReceipt(t *testing.T) {
	hash := common.HexToHash("0xdead")
	tx := &fakeTxService{
		connected: true,
		chainID:   177,
		writeHash: hash,
		receipt:   &types.Receipt{Status: types.ReceiptStatusFailed},
	}

	refreshed := false
	m := NewMinter(tx, &fakeMintable{total: big.NewInt(5)}, veHSKContract, 177, func() { refreshed = true })

	got, err := m.Mint(context.Background(), testAccount)
	require.ErrorIs(t, err, ErrMintReverted)
	assert.Equal(t, hash, got, "the hash is returned even on revert for explorers")
	assert.False(t, refreshed)

	st := m.Status()
	assert.Equal(t, MintFailed, st.State)
	assert.Equal(t, hash, st.TxHash)
}

func TestMintRejectsConcurrentAttempt(t *testing.T) {
	m := NewMinter(&fakeTxService{}, &fakeMintable{}, veHSKContract, 177, nil)
	m.status.State = MintConfirming

	_, err := m.Mint(context.Background(), testAccount)
	require.ErrorIs(t, err, ErrMintInFlight)
}

func TestMintReadFailure(t *testing.T) {
	readErr := errors.New("rpc: connection refused")
	tx := &fakeTxService{connected: true, chainID: 177}
	m := NewMinter(tx, &fakeMintable{err: readErr}, veHSKContract, 177, nil)

	_, err := m.Mint(context.Background(), testAccount)
	require.ErrorIs(t, err, readErr)
}
