package events

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"

	"github.com/hashkey-chain/hodlium/internal/chain"
)

// DefaultMaxBlockRange is the widest span a single eth_getLogs query may
// cover; public RPC providers reject anything larger.
const DefaultMaxBlockRange = 1000

// Query describes one fetch session.
type Query struct {
	FromBlock uint64
	ToBlock   uint64 // ignored when Latest is set
	Latest    bool   // resolve the upper bound from the node, once
	Account   *common.Address
	Kinds     []Kind
}

// Fetcher paginates event-log queries against the staking contract.
//
// Chunks are visited sequentially to bound in-flight request count; within a
// chunk the requested event kinds are fetched concurrently. A failed chunk
// contributes nothing and is logged, it never aborts the session: partial
// data is worth more than none on these read-only paths.
type Fetcher struct {
	client   chain.LogQuerier
	contract common.Address
	maxRange uint64
}

// NewFetcher creates a Fetcher for the given contract.
func NewFetcher(client chain.LogQuerier, contract common.Address) *Fetcher {
	return &Fetcher{client: client, contract: contract, maxRange: DefaultMaxBlockRange}
}

// Fetch retrieves all requested events in [q.FromBlock, q.ToBlock] and
// returns them sorted by descending block number. The "latest" upper bound is
// resolved exactly once so every chunk sees the same stable range.
func (f *Fetcher) Fetch(ctx context.Context, q Query) (*Set, error) {
	toBlock := q.ToBlock
	if q.Latest {
		head, err := f.client.BlockNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve latest block: %w", err)
		}
		toBlock = head
	}
	if q.FromBlock > toBlock {
		return nil, fmt.Errorf("invalid range: from %d > to %d", q.FromBlock, toBlock)
	}
	if len(q.Kinds) == 0 {
		return nil, fmt.Errorf("no event kinds requested")
	}

	set := &Set{}
	for _, r := range splitRange(q.FromBlock, toBlock, f.maxRange) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slog.Debug("fetching event chunk",
			"from_block", r.from,
			"to_block", r.to,
			"kinds", len(q.Kinds),
		)

		chunk, err := f.fetchChunk(ctx, r, q)
		if err != nil {
			slog.Warn("event chunk failed, skipping",
				"from_block", r.from,
				"to_block", r.to,
				"err", err,
			)
			continue
		}
		set.merge(chunk)
	}

	set.sortDescending()
	return set, nil
}

type blockRange struct {
	from, to uint64
}

// splitRange partitions [from, to] into contiguous chunks of at most max
// blocks with no gaps and no overlaps.
func splitRange(from, to, max uint64) []blockRange {
	var ranges []blockRange
	for cursor := from; cursor <= to; {
		end := cursor + max - 1
		if end > to || end < cursor { // second clause guards uint64 wrap
			end = to
		}
		ranges = append(ranges, blockRange{from: cursor, to: end})
		cursor = end + 1
		if cursor == 0 { // wrapped past max uint64
			break
		}
	}
	return ranges
}

// fetchChunk fans out one getLogs query per requested kind and joins them.
// Any failure discards the whole chunk (the caller absorbs it).
func (f *Fetcher) fetchChunk(ctx context.Context, r blockRange, q Query) (*Set, error) {
	chunk := &Set{}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for _, kind := range q.Kinds {
		kind := kind
		g.Go(func() error {
			logs, err := f.client.FilterLogs(gCtx, f.filterFor(kind, r, q.Account))
			if err != nil {
				return fmt.Errorf("%s logs: %w", kind, err)
			}

			mu.Lock()
			defer mu.Unlock()
			chunk.appendLogs(kind, logs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunk, nil
}

func (f *Fetcher) filterFor(kind Kind, r blockRange, account *common.Address) ethereum.FilterQuery {
	topics := [][]common.Hash{{chain.StakingABI.Events[string(kind)].ID}}
	// Staking events index the staker as the first topic argument.
	// RewardsAdded indexes the funder there instead, so an account filter
	// does not constrain it.
	if account != nil && kind != KindRewardsAdded {
		topics = append(topics, []common.Hash{common.BytesToHash(account.Bytes())})
	}
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(r.from),
		ToBlock:   new(big.Int).SetUint64(r.to),
		Addresses: []common.Address{f.contract},
		Topics:    topics,
	}
}

// appendLogs decodes logs of one kind into the set. Undecodable logs are
// skipped with a warning so one malformed entry cannot poison a chunk.
func (s *Set) appendLogs(kind Kind, logs []types.Log) {
	for _, log := range logs {
		switch kind {
		case KindStake:
			rec, err := normalizeStake(log)
			if err != nil {
				logDecodeFailure(kind, log.BlockNumber, err)
				continue
			}
			s.Stakes = append(s.Stakes, rec)
		case KindUnstake:
			rec, err := normalizeUnstake(log)
			if err != nil {
				logDecodeFailure(kind, log.BlockNumber, err)
				continue
			}
			s.Unstakes = append(s.Unstakes, rec)
		case KindRequestUnstakeFlexible:
			rec, err := normalizeFlexibleUnstake(log)
			if err != nil {
				logDecodeFailure(kind, log.BlockNumber, err)
				continue
			}
			s.FlexibleUnstakes = append(s.FlexibleUnstakes, rec)
		case KindRewardsAdded:
			rec, err := normalizeRewardsAdded(log)
			if err != nil {
				logDecodeFailure(kind, log.BlockNumber, err)
				continue
			}
			s.RewardsAdded = append(s.RewardsAdded, rec)
		case KindEmergencyWithdraw:
			rec, err := normalizeEmergencyWithdraw(log)
			if err != nil {
				logDecodeFailure(kind, log.BlockNumber, err)
				continue
			}
			s.EmergencyWithdraws = append(s.EmergencyWithdraws, rec)
		}
	}
}

func logDecodeFailure(kind Kind, block uint64, err error) {
	slog.Warn("failed to decode log", "kind", string(kind), "block", block, "err", err)
}

func (s *Set) merge(other *Set) {
	s.Stakes = append(s.Stakes, other.Stakes...)
	s.Unstakes = append(s.Unstakes, other.Unstakes...)
	s.FlexibleUnstakes = append(s.FlexibleUnstakes, other.FlexibleUnstakes...)
	s.RewardsAdded = append(s.RewardsAdded, other.RewardsAdded...)
	s.EmergencyWithdraws = append(s.EmergencyWithdraws, other.EmergencyWithdraws...)
}

// sortDescending orders every slice newest-first. Order within a block is
// unspecified; callers needing the settled order must wait for Fetch to
// return rather than observing partial state.
func (s *Set) sortDescending() {
	sort.SliceStable(s.Stakes, func(i, j int) bool { return s.Stakes[i].BlockNumber > s.Stakes[j].BlockNumber })
	sort.SliceStable(s.Unstakes, func(i, j int) bool { return s.Unstakes[i].BlockNumber > s.Unstakes[j].BlockNumber })
	sort.SliceStable(s.FlexibleUnstakes, func(i, j int) bool {
		return s.FlexibleUnstakes[i].BlockNumber > s.FlexibleUnstakes[j].BlockNumber
	})
	sort.SliceStable(s.RewardsAdded, func(i, j int) bool {
		return s.RewardsAdded[i].BlockNumber > s.RewardsAdded[j].BlockNumber
	})
	sort.SliceStable(s.EmergencyWithdraws, func(i, j int) bool {
		return s.EmergencyWithdraws[i].BlockNumber > s.EmergencyWithdraws[j].BlockNumber
	})
}
