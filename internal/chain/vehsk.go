package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MintableAmountInfo is the result of getMintableAmount. The contract
// guarantees MintableTotal == FlexibleMintable + LockedMintable; the client
// displays and consumes this value, it never disputes it.
type MintableAmountInfo struct {
	MintableTotal      *big.Int
	FlexibleMintable   *big.Int
	LockedMintable     *big.Int
	FlexibleStakeCount *big.Int
	LockedStakeCount   *big.Int
}

// VeHSKReader exposes typed reads against the veHSK contract.
type VeHSKReader struct {
	caller   Caller
	contract common.Address
}

// NewVeHSKReader builds a reader bound to the veHSK contract address.
func NewVeHSKReader(caller Caller, contract common.Address) *VeHSKReader {
	return &VeHSKReader{caller: caller, contract: contract}
}

// Contract returns the veHSK contract address.
func (r *VeHSKReader) Contract() common.Address { return r.contract }

// MintableAmount fetches the claimable veHSK breakdown for an account.
func (r *VeHSKReader) MintableAmount(ctx context.Context, account common.Address) (MintableAmountInfo, error) {
	vals, err := r.caller.Call(ctx, r.contract, &VeHSKABI, "getMintableAmount", account)
	if err != nil {
		return MintableAmountInfo{}, err
	}
	if len(vals) != 5 {
		return MintableAmountInfo{}, fmt.Errorf("getMintableAmount: %d outputs", len(vals))
	}
	return MintableAmountInfo{
		MintableTotal:      vals[0].(*big.Int),
		FlexibleMintable:   vals[1].(*big.Int),
		LockedMintable:     vals[2].(*big.Int),
		FlexibleStakeCount: vals[3].(*big.Int),
		LockedStakeCount:   vals[4].(*big.Int),
	}, nil
}
