package handler

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/hashkey-chain/hodlium/internal/events"
	"github.com/hashkey-chain/hodlium/internal/export"
	"github.com/hashkey-chain/hodlium/internal/rewards"
)

type positionResponse struct {
	StakeID      string `json:"stakeId"`
	Principal    string `json:"principal"`
	Shares       string `json:"shares"`
	Class        string `json:"class"`
	LockEndTime  string `json:"lockEndTime"`
	LockEndMonth string `json:"lockEndMonth"`
	BlockNumber  string `json:"blockNumber"`
	TxHash       string `json:"txHash"`
}

type bucketResponse struct {
	Period    string `json:"period"`
	Principal string `json:"principal"`
	Reward    string `json:"reward"`
	Count     int    `json:"count"`
}

type rewardsResponse struct {
	Account        string           `json:"account"`
	PositionCount  int              `json:"positionCount"`
	TotalPrincipal string           `json:"totalPrincipal"`
	TotalReward    string           `json:"totalReward"`
	TotalRewardHSK string           `json:"totalRewardHsk"`
	Months         []bucketResponse `json:"months"`
	Years          []bucketResponse `json:"years"`
}

// HandlePositions returns the account's open positions, newest first.
func (h *Handler) HandlePositions(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountParam(w, r)
	if !ok {
		return
	}

	active, err := h.activePositions(r, account)
	if err != nil {
		h.Logger.Error("failed to fetch positions",
			zap.String("account", account.Hex()), zap.Error(err))
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := make([]positionResponse, 0, len(active))
	for _, p := range active {
		resp = append(resp, positionResponse{
			StakeID:      export.BaseUnits(p.StakeID),
			Principal:    export.BaseUnits(p.Principal),
			Shares:       export.BaseUnits(p.Shares),
			Class:        p.Class.String(),
			LockEndTime:  export.BaseUnits(p.LockEndTime),
			LockEndMonth: p.LockEndMonth,
			BlockNumber:  strconv.FormatUint(p.BlockNumber, 10),
			TxHash:       p.TxHash.Hex(),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleRewards returns projected rewards for the account's open locked
// positions, bucketed by maturity month and year.
func (h *Handler) HandleRewards(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountParam(w, r)
	if !ok {
		return
	}

	set, err := h.fetchAccountSet(r, account)
	if err != nil {
		h.Logger.Error("failed to fetch rewards",
			zap.String("account", account.Hex()), zap.Error(err))
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	summary := rewards.Summarize(h.Estimator.EstimateAll(events.ActiveLocked(set)))

	resp := rewardsResponse{
		Account:        account.Hex(),
		PositionCount:  summary.PositionCount,
		TotalPrincipal: export.BaseUnits(summary.TotalPrincipal),
		TotalReward:    export.BaseUnits(summary.TotalReward),
		TotalRewardHSK: export.Ether(summary.TotalReward),
		Months:         toBucketResponses(summary.Months),
		Years:          toBucketResponses(summary.Years),
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type accountVeHSKResponse struct {
	Account          string `json:"account"`
	AccruedTotal     string `json:"accruedTotal"`
	AccruedLocked    string `json:"accruedLocked"`
	AccruedFlexible  string `json:"accruedFlexible"`
	DailyRate        string `json:"dailyRate"`
	MintableTotal    string `json:"mintableTotal"`
	FlexibleMintable string `json:"flexibleMintable"`
	LockedMintable   string `json:"lockedMintable"`
}

// HandleAccountVeHSK computes the live accrual projection and the contract's
// authoritative mintable figure for one account.
func (h *Handler) HandleAccountVeHSK(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountParam(w, r)
	if !ok {
		return
	}

	accrual, err := h.Accruer.Accrue(r.Context(), account)
	if err != nil {
		h.Logger.Error("failed to compute accrual",
			zap.String("account", account.Hex()), zap.Error(err))
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	mintable, err := h.Mintable.MintableAmount(r.Context(), account)
	if err != nil {
		h.Logger.Error("failed to read mintable amount",
			zap.String("account", account.Hex()), zap.Error(err))
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, accountVeHSKResponse{
		Account:          account.Hex(),
		AccruedTotal:     export.BaseUnits(accrual.Total),
		AccruedLocked:    export.BaseUnits(accrual.Locked),
		AccruedFlexible:  export.BaseUnits(accrual.Flexible),
		DailyRate:        export.BaseUnits(accrual.DailyRate),
		MintableTotal:    export.BaseUnits(mintable.MintableTotal),
		FlexibleMintable: export.BaseUnits(mintable.FlexibleMintable),
		LockedMintable:   export.BaseUnits(mintable.LockedMintable),
	})
}

func (h *Handler) activePositions(r *http.Request, account common.Address) ([]events.StakeRecord, error) {
	set, err := h.fetchAccountSet(r, account)
	if err != nil {
		return nil, err
	}
	return events.Reconcile(set), nil
}

func (h *Handler) fetchAccountSet(r *http.Request, account common.Address) (*events.Set, error) {
	fromBlock := h.DeployBlock
	if raw := r.URL.Query().Get("from_block"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			fromBlock = parsed
		}
	}

	return h.Fetcher.Fetch(r.Context(), events.Query{
		FromBlock: fromBlock,
		Latest:    true,
		Account:   &account,
		Kinds: []events.Kind{
			events.KindStake,
			events.KindUnstake,
			events.KindRequestUnstakeFlexible,
		},
	})
}

func toBucketResponses(buckets []rewards.Bucket) []bucketResponse {
	out := make([]bucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, bucketResponse{
			Period:    b.Period,
			Principal: export.BaseUnits(b.Principal),
			Reward:    export.BaseUnits(b.Reward),
			Count:     b.Count,
		})
	}
	return out
}
