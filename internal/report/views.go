package report

import (
	"fmt"

	"github.com/hashkey-chain/hodlium/internal/events"
	"github.com/hashkey-chain/hodlium/internal/export"
)

// JSON views of raw event records. Amounts stay exact base-unit strings.

type stakeEventView struct {
	User            string `json:"user"`
	HskAmount       string `json:"hskAmount"`
	SharesAmount    string `json:"sharesAmount"`
	StakeType       uint8  `json:"stakeType"`
	LockEndTime     string `json:"lockEndTime"`
	LockEndMonth    string `json:"lockEndMonth"`
	StakeID         string `json:"stakeId"`
	BlockNumber     string `json:"blockNumber"`
	TransactionHash string `json:"transactionHash"`
}

type unstakeEventView struct {
	User              string `json:"user"`
	SharesAmount      string `json:"sharesAmount"`
	HskAmount         string `json:"hskAmount"`
	IsEarlyWithdrawal bool   `json:"isEarlyWithdrawal"`
	Penalty           string `json:"penalty"`
	StakeID           string `json:"stakeId"`
	BlockNumber       string `json:"blockNumber"`
	TransactionHash   string `json:"transactionHash"`
}

type flexibleEventView struct {
	User            string `json:"user"`
	StakeID         string `json:"stakeId"`
	HskAmount       string `json:"hskAmount"`
	ClaimableBlock  string `json:"claimableBlock"`
	BlockNumber     string `json:"blockNumber"`
	TransactionHash string `json:"transactionHash"`
}

func stakeEventViews(recs []events.StakeRecord) []stakeEventView {
	out := make([]stakeEventView, 0, len(recs))
	for _, r := range recs {
		out = append(out, stakeEventView{
			User:            r.Account.Hex(),
			HskAmount:       export.BaseUnits(r.Principal),
			SharesAmount:    export.BaseUnits(r.Shares),
			StakeType:       uint8(r.Class),
			LockEndTime:     export.BaseUnits(r.LockEndTime),
			LockEndMonth:    r.LockEndMonth,
			StakeID:         export.BaseUnits(r.StakeID),
			BlockNumber:     fmt.Sprintf("%d", r.BlockNumber),
			TransactionHash: r.TxHash.Hex(),
		})
	}
	return out
}

func unstakeEventViews(recs []events.UnstakeRecord) []unstakeEventView {
	out := make([]unstakeEventView, 0, len(recs))
	for _, r := range recs {
		out = append(out, unstakeEventView{
			User:              r.Account.Hex(),
			SharesAmount:      export.BaseUnits(r.Shares),
			HskAmount:         export.BaseUnits(r.HskAmount),
			IsEarlyWithdrawal: r.IsEarlyWithdrawal,
			Penalty:           export.BaseUnits(r.Penalty),
			StakeID:           export.BaseUnits(r.StakeID),
			BlockNumber:       fmt.Sprintf("%d", r.BlockNumber),
			TransactionHash:   r.TxHash.Hex(),
		})
	}
	return out
}

func flexibleEventViews(recs []events.FlexibleUnstakeRecord) []flexibleEventView {
	out := make([]flexibleEventView, 0, len(recs))
	for _, r := range recs {
		out = append(out, flexibleEventView{
			User:            r.Account.Hex(),
			StakeID:         export.BaseUnits(r.StakeID),
			HskAmount:       export.BaseUnits(r.HskAmount),
			ClaimableBlock:  export.BaseUnits(r.ClaimableBlock),
			BlockNumber:     fmt.Sprintf("%d", r.BlockNumber),
			TransactionHash: r.TxHash.Hex(),
		})
	}
	return out
}
