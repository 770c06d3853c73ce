package handler

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/hashkey-chain/hodlium/internal/chain"
	"github.com/hashkey-chain/hodlium/internal/events"
	"github.com/hashkey-chain/hodlium/internal/exportjob"
	"github.com/hashkey-chain/hodlium/internal/refresh"
	"github.com/hashkey-chain/hodlium/internal/rewards"
	"github.com/hashkey-chain/hodlium/internal/vehsk"
)

// The IO surfaces the handlers need, injected so tests can fake them.
type (
	eventFetcher interface {
		Fetch(ctx context.Context, q events.Query) (*events.Set, error)
	}
	overviewReader interface {
		Overview(ctx context.Context, simulatedAmount *big.Int) (chain.StakingOverview, error)
	}
	accruer interface {
		Accrue(ctx context.Context, account common.Address) (vehsk.Accrual, error)
	}
	mintableReader interface {
		MintableAmount(ctx context.Context, account common.Address) (chain.MintableAmountInfo, error)
	}
	minter interface {
		Mint(ctx context.Context, account common.Address) (common.Hash, error)
		Status() vehsk.MintStatus
	}
	snapshotter interface {
		Snapshot() *refresh.Snapshot
	}
	jobPublisher interface {
		Publish(ctx context.Context, job exportjob.Job) (string, error)
		QueueLength(ctx context.Context) (int64, error)
	}
)

// Handler holds the dependencies for API handlers
type Handler struct {
	Logger     *zap.Logger
	AdminToken string
	Operator   common.Address

	Fetcher     eventFetcher
	Estimator   *rewards.Estimator
	Overview    overviewReader
	Accruer     accruer
	Mintable    mintableReader
	Minter      minter
	Refresher   snapshotter
	Publisher   jobPublisher
	DeployBlock uint64
}

// NewRouter creates and configures the HTTP router with all API routes
func (h *Handler) NewRouter() *mux.Router {
	r := mux.NewRouter()

	// Public read endpoints
	r.HandleFunc("/api/health", h.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/overview", h.HandleOverview).Methods(http.MethodGet)
	r.HandleFunc("/api/vehsk", h.HandleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts/{address}/positions", h.HandlePositions).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts/{address}/rewards", h.HandleRewards).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts/{address}/vehsk", h.HandleAccountVeHSK).Methods(http.MethodGet)
	r.HandleFunc("/api/mint/status", h.HandleMintStatus).Methods(http.MethodGet)

	// Protected write endpoints
	r.HandleFunc("/api/mint", h.RequireAuth(h.HandleMint)).Methods(http.MethodPost)
	r.HandleFunc("/api/exports", h.RequireAuth(h.HandleExport)).Methods(http.MethodPost)

	return r
}

// RequireAuth is a middleware that validates the bearer token
func (h *Handler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		expected := "Bearer " + h.AdminToken

		if auth != expected {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}

		next(w, r)
	}
}

// HandleHealth returns a simple health check response
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// accountParam parses the {address} path variable. A false return means the
// response is already written.
func (h *Handler) accountParam(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	raw := mux.Vars(r)["address"]
	if !common.IsHexAddress(raw) {
		h.writeError(w, http.StatusBadRequest, "invalid address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func (h *Handler) accountFromString(raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
