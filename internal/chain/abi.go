package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// stakingABIJSON covers the events and read/write surface of the staking
// contract that this service consumes. Field order and indexing must match the
// deployed contract exactly or log decoding silently misattributes values.
const stakingABIJSON = `[
	{"type":"event","name":"Stake","inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"hskAmount","type":"uint256","indexed":false},
		{"name":"sharesAmount","type":"uint256","indexed":false},
		{"name":"stakeType","type":"uint8","indexed":false},
		{"name":"lockEndTime","type":"uint256","indexed":false},
		{"name":"stakeId","type":"uint256","indexed":false}]},
	{"type":"event","name":"Unstake","inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"sharesAmount","type":"uint256","indexed":false},
		{"name":"hskAmount","type":"uint256","indexed":false},
		{"name":"isEarlyWithdrawal","type":"bool","indexed":false},
		{"name":"penalty","type":"uint256","indexed":false},
		{"name":"stakeId","type":"uint256","indexed":false}]},
	{"type":"event","name":"RequestUnstakeFlexible","inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"stakeId","type":"uint256","indexed":true},
		{"name":"hskAmount","type":"uint256","indexed":false},
		{"name":"claimableBlock","type":"uint256","indexed":false}]},
	{"type":"event","name":"RewardsAdded","inputs":[
		{"name":"amount","type":"uint256","indexed":false},
		{"name":"from","type":"address","indexed":true}]},
	{"type":"event","name":"EmergencyWithdraw","inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"sharesAmount","type":"uint256","indexed":false},
		{"name":"hskAmount","type":"uint256","indexed":false}]},
	{"type":"function","name":"getLockedStakeInfo","stateMutability":"view","inputs":[
		{"name":"user","type":"address"},{"name":"stakeId","type":"uint256"}],"outputs":[
		{"name":"sharesAmount","type":"uint256"},
		{"name":"hskAmount","type":"uint256"},
		{"name":"currentHskValue","type":"uint256"},
		{"name":"lockEndTime","type":"uint256"},
		{"name":"isWithdrawn","type":"bool"},
		{"name":"isLocked","type":"bool"}]},
	{"type":"function","name":"getFlexibleStakeInfo","stateMutability":"view","inputs":[
		{"name":"user","type":"address"},{"name":"stakeId","type":"uint256"}],"outputs":[
		{"name":"sharesAmount","type":"uint256"},
		{"name":"hskAmount","type":"uint256"},
		{"name":"currentHskValue","type":"uint256"},
		{"name":"stakeBlock","type":"uint256"},
		{"name":"claimableBlock","type":"uint256"},
		{"name":"status","type":"uint8"}]},
	{"type":"function","name":"getStakeReward","stateMutability":"view","inputs":[
		{"name":"user","type":"address"},{"name":"stakeId","type":"uint256"}],"outputs":[
		{"name":"originalAmount","type":"uint256"},
		{"name":"reward","type":"uint256"},
		{"name":"actualReward","type":"uint256"},
		{"name":"totalValue","type":"uint256"}]},
	{"type":"function","name":"getUserLockedStakeCount","stateMutability":"view","inputs":[
		{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getUserFlexibleStakeCount","stateMutability":"view","inputs":[
		{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalValueLocked","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getCurrentExchangeRate","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"minStakeAmount","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getAllStakingAPRs","stateMutability":"view","inputs":[
		{"name":"stakeAmount","type":"uint256"}],"outputs":[
		{"name":"estimatedAPRs","type":"uint256[]"},
		{"name":"maxAPRs","type":"uint256[]"}]},
	{"type":"function","name":"stake","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"function","name":"stakeLocked","stateMutability":"payable","inputs":[
		{"name":"stakeType","type":"uint8"}],"outputs":[]},
	{"type":"function","name":"unstakeLocked","stateMutability":"nonpayable","inputs":[
		{"name":"stakeId","type":"uint256"}],"outputs":[]}
]`

// veHSKABIJSON covers the vote-escrow token surface: the aggregated mintable
// read and the no-argument mint entrypoint.
const veHSKABIJSON = `[
	{"type":"function","name":"getMintableAmount","stateMutability":"view","inputs":[
		{"name":"user","type":"address"}],"outputs":[
		{"name":"mintableTotal","type":"uint256"},
		{"name":"flexibleMintable","type":"uint256"},
		{"name":"lockedMintable","type":"uint256"},
		{"name":"flexibleStakeCount","type":"uint256"},
		{"name":"lockedStakeCount","type":"uint256"}]},
	{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

var (
	// StakingABI is the parsed staking contract ABI.
	StakingABI = mustParseABI(stakingABIJSON)
	// VeHSKABI is the parsed veHSK contract ABI.
	VeHSKABI = mustParseABI(veHSKABIJSON)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}
