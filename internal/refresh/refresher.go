// Package refresh keeps a periodically recomputed snapshot of an account's
// vote-escrow state. The snapshot is published atomically: readers either see
// the previous complete snapshot or the new one, never a partial mix.
package refresh

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/hashkey-chain/hodlium/internal/chain"
	"github.com/hashkey-chain/hodlium/internal/vehsk"
)

// DefaultInterval matches the source system's 5-minute refresh cadence.
const DefaultInterval = 5 * time.Minute

// Snapshot is one complete recomputation of the account's escrow state.
type Snapshot struct {
	Account   common.Address
	Accrual   vehsk.Accrual
	Mintable  chain.MintableAmountInfo
	UpdatedAt time.Time
}

type accruer interface {
	Accrue(ctx context.Context, account common.Address) (vehsk.Accrual, error)
}

type mintableReader interface {
	MintableAmount(ctx context.Context, account common.Address) (chain.MintableAmountInfo, error)
}

// Refresher recomputes and publishes snapshots on a fixed interval. Refresh
// can also be called directly, e.g. right after a confirmed mint.
type Refresher struct {
	accruer  accruer
	mintable mintableReader
	account  common.Address
	interval time.Duration

	snap atomic.Pointer[Snapshot]
}

// New builds a Refresher for one account. A non-positive interval falls back
// to DefaultInterval.
func New(accruer accruer, mintable mintableReader, account common.Address, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Refresher{
		accruer:  accruer,
		mintable: mintable,
		account:  account,
		interval: interval,
	}
}

// Snapshot returns the latest published snapshot, or nil before the first
// successful refresh.
func (r *Refresher) Snapshot() *Snapshot {
	return r.snap.Load()
}

// Refresh recomputes the snapshot and publishes it. On error the previous
// snapshot stays in place.
func (r *Refresher) Refresh(ctx context.Context) error {
	var (
		accrual  vehsk.Accrual
		mintable chain.MintableAmountInfo
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accrual, err = r.accruer.Accrue(gCtx, r.account)
		return err
	})
	g.Go(func() error {
		var err error
		mintable, err = r.mintable.MintableAmount(gCtx, r.account)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	r.snap.Store(&Snapshot{
		Account:   r.account,
		Accrual:   accrual,
		Mintable:  mintable,
		UpdatedAt: time.Now(),
	})
	return nil
}

// Run refreshes immediately, then on every tick until the context ends.
// Individual refresh failures are logged and the loop keeps going.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil {
		slog.Warn("initial refresh failed", "account", r.account.Hex(), "err", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				slog.Warn("refresh failed", "account", r.account.Hex(), "err", err)
			}
		}
	}
}
