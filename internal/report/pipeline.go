package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hashkey-chain/hodlium/internal/events"
	"github.com/hashkey-chain/hodlium/internal/export"
)

// Artifact file names within the output directory. Fixed names keep the
// latest report at a stable path; each run overwrites the previous one.
const (
	fileActiveStakes     = "active-stakes.json"
	fileProcessedStakes  = "processed-stakes.json"
	fileRewardSummaries  = "reward-summaries.json"
	fileUnstakeEvents    = "unstake-events.json"
	fileFlexibleEvents   = "flexible-unstake-events.json"
	fileLockedRewards    = "locked_unstake_rewards.xlsx"
	fileFlexibleRequests = "flexible_unstake_requests.xlsx"
)

type eventFetcher interface {
	Fetch(ctx context.Context, q events.Query) (*events.Set, error)
}

// Pipeline runs the full fetch, reconcile, estimate, export sequence.
type Pipeline struct {
	fetcher   eventFetcher
	generator *Generator
	outputDir string
}

// NewPipeline builds a Pipeline writing artifacts under outputDir.
func NewPipeline(fetcher eventFetcher, generator *Generator, outputDir string) *Pipeline {
	return &Pipeline{fetcher: fetcher, generator: generator, outputDir: outputDir}
}

// RunOptions selects the block range and optional account filter for a run.
type RunOptions struct {
	FromBlock uint64
	ToBlock   uint64
	Latest    bool
	Account   *common.Address
}

// Result describes a completed run.
type Result struct {
	Files       []string
	ActiveCount int
	StakeEvents int
	Unstakes    int
}

// Run executes the pipeline and writes every artifact.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	set, err := p.fetcher.Fetch(ctx, events.Query{
		FromBlock: opts.FromBlock,
		ToBlock:   opts.ToBlock,
		Latest:    opts.Latest,
		Account:   opts.Account,
		Kinds: []events.Kind{
			events.KindStake,
			events.KindUnstake,
			events.KindRequestUnstakeFlexible,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	active := events.Reconcile(set)
	slog.Info("events reconciled",
		"stakes", len(set.Stakes),
		"unstakes", len(set.Unstakes),
		"flexible_unstakes", len(set.FlexibleUnstakes),
		"active", len(active),
	)

	processed := p.generator.ProcessStakes(ctx, events.ActiveLocked(set))
	summaries := BuildSummaries(processed)
	lockedRows, flexibleRows := p.generator.UnstakeRewards(ctx, set)

	res := &Result{
		ActiveCount: len(active),
		StakeEvents: len(set.Stakes),
		Unstakes:    len(set.Unstakes) + len(set.FlexibleUnstakes),
	}

	writes := []struct {
		name  string
		write func(path string) error
	}{
		{fileActiveStakes, func(path string) error {
			return export.WriteJSON(path, stakeEventViews(active))
		}},
		{fileProcessedStakes, func(path string) error {
			return export.WriteJSON(path, processed)
		}},
		{fileRewardSummaries, func(path string) error {
			return export.WriteJSON(path, summaries)
		}},
		{fileUnstakeEvents, func(path string) error {
			return export.WriteJSON(path, unstakeEventViews(set.Unstakes))
		}},
		{fileFlexibleEvents, func(path string) error {
			return export.WriteJSON(path, flexibleEventViews(set.FlexibleUnstakes))
		}},
		{fileLockedRewards, func(path string) error {
			return export.WriteLockedUnstakeSheet(path, lockedRows)
		}},
		{fileFlexibleRequests, func(path string) error {
			return export.WriteFlexibleUnstakeSheet(path, flexibleRows)
		}},
	}

	for _, w := range writes {
		path := filepath.Join(p.outputDir, w.name)
		if err := w.write(path); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
	}

	return res, nil
}
