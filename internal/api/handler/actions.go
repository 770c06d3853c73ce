package handler

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/hashkey-chain/hodlium/internal/export"
	"github.com/hashkey-chain/hodlium/internal/exportjob"
)

// defaultSimulatedStake is the stake size APRs are quoted against when the
// caller does not provide one: 1000 HSK.
var defaultSimulatedStake = new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))

type overviewResponse struct {
	TotalValueLocked string   `json:"totalValueLocked"`
	ExchangeRate     string   `json:"exchangeRate"`
	MinStakeAmount   string   `json:"minStakeAmount"`
	EstimatedAPRs    []string `json:"estimatedAprs"`
	MaxAPRs          []string `json:"maxAprs"`
}

// HandleOverview returns the contract-level staking stats.
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	amount := defaultSimulatedStake
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			h.writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		amount = parsed
	}

	overview, err := h.Overview.Overview(r.Context(), amount)
	if err != nil {
		h.Logger.Error("failed to read staking overview", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, overviewResponse{
		TotalValueLocked: export.BaseUnits(overview.TotalValueLocked),
		ExchangeRate:     export.BaseUnits(overview.ExchangeRate),
		MinStakeAmount:   export.BaseUnits(overview.MinStakeAmount),
		EstimatedAPRs:    baseUnitStrings(overview.EstimatedAPRs),
		MaxAPRs:          baseUnitStrings(overview.MaxAPRs),
	})
}

type snapshotResponse struct {
	Account       string `json:"account"`
	AccruedTotal  string `json:"accruedTotal"`
	DailyRate     string `json:"dailyRate"`
	MintableTotal string `json:"mintableTotal"`
	UpdatedAt     string `json:"updatedAt"`
}

// HandleSnapshot returns the operator account's periodically refreshed
// vote-escrow snapshot.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.Refresher.Snapshot()
	if snap == nil {
		h.writeError(w, http.StatusServiceUnavailable, "snapshot not ready")
		return
	}

	h.writeJSON(w, http.StatusOK, snapshotResponse{
		Account:       snap.Account.Hex(),
		AccruedTotal:  export.BaseUnits(snap.Accrual.Total),
		DailyRate:     export.BaseUnits(snap.Accrual.DailyRate),
		MintableTotal: export.BaseUnits(snap.Mintable.MintableTotal),
		UpdatedAt:     snap.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

type mintStatusResponse struct {
	State  string `json:"state"`
	TxHash string `json:"txHash,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HandleMintStatus reports the current or last mint attempt.
func (h *Handler) HandleMintStatus(w http.ResponseWriter, r *http.Request) {
	st := h.Minter.Status()
	resp := mintStatusResponse{State: st.State.String()}
	if st.TxHash != (common.Hash{}) {
		resp.TxHash = st.TxHash.Hex()
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleMint starts a mint for the operator account. The attempt runs in the
// background; progress is observable via /api/mint/status.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := h.Minter.Mint(ctx, h.Operator); err != nil {
			h.Logger.Warn("mint attempt failed", zap.Error(err))
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]string{"state": "pending"})
}

type exportRequest struct {
	FromBlock uint64 `json:"from_block"`
	ToBlock   uint64 `json:"to_block"`
	Account   string `json:"account"`
}

// HandleExport enqueues an export job and returns its queue position.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if h.Publisher == nil {
		h.writeError(w, http.StatusServiceUnavailable, "export queue disabled")
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warn("bad json in export request", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	job := exportjob.Job{
		FromBlock: req.FromBlock,
		ToBlock:   req.ToBlock,
		Latest:    req.ToBlock == 0,
	}
	if job.FromBlock == 0 {
		job.FromBlock = h.DeployBlock
	}
	if req.Account != "" {
		account, ok := h.accountFromString(req.Account)
		if !ok {
			h.writeError(w, http.StatusBadRequest, "invalid account")
			return
		}
		job.Account = &account
	}

	msgID, err := h.Publisher.Publish(r.Context(), job)
	if err != nil {
		h.Logger.Error("failed to enqueue export job", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	queued, err := h.Publisher.QueueLength(r.Context())
	if err != nil {
		h.Logger.Warn("failed to read queue length", zap.Error(err))
		queued = -1
	}

	h.writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id": msgID,
		"queued": queued,
	})
}

func baseUnitStrings(vals []*big.Int) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, export.BaseUnits(v))
	}
	return out
}
