package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hashkey-chain/hodlium/internal/chain"
	"github.com/hashkey-chain/hodlium/internal/config"
	"github.com/hashkey-chain/hodlium/internal/events"
	"github.com/hashkey-chain/hodlium/internal/report"
	"github.com/hashkey-chain/hodlium/internal/rewards"
)

func main() {
	// Parse flags
	fromBlock := flag.Uint64("from", 0, "Start block (default: contract deploy block)")
	toBlock := flag.Uint64("to", 0, "End block (default: latest)")
	account := flag.String("account", "", "Only include events for this account")
	outDir := flag.String("out", "", "Output directory (default: OUTPUT_DIR)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load base configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	// Setup logging
	setupLogging(cfg.LogLevel)

	opts := report.RunOptions{
		FromBlock: cfg.DeployBlock,
		Latest:    true,
	}
	if *fromBlock > 0 {
		opts.FromBlock = *fromBlock
	}
	if *toBlock > 0 {
		opts.ToBlock = *toBlock
		opts.Latest = false
	}
	if *account != "" {
		if !common.IsHexAddress(*account) {
			slog.Error("invalid account address", "account", *account)
			os.Exit(1)
		}
		addr := common.HexToAddress(*account)
		opts.Account = &addr
	}

	outputDir := cfg.OutputDir
	if *outDir != "" {
		outputDir = *outDir
	}

	slog.Info("hodlium export starting",
		"chain_id", cfg.ChainID,
		"from_block", opts.FromBlock,
		"to_block", opts.ToBlock,
		"latest", opts.Latest,
		"output_dir", outputDir,
	)

	// Connect to the chain node
	client, err := chain.Dial(ctx, chain.Opts{
		URL:     cfg.RPCURL,
		ChainID: cfg.ChainID,
		Timeout: cfg.RPCTimeout,
	})
	if err != nil {
		slog.Error("failed to connect to node", "err", err)
		os.Exit(1)
	}
	defer client.Close()

	stakingReader := chain.NewStakingReader(client, cfg.Contracts.Staking)
	fetcher := events.NewFetcher(client, cfg.Contracts.Staking)
	generator := report.NewGenerator(stakingReader, rewards.NewEstimator())
	pipeline := report.NewPipeline(fetcher, generator, outputDir)

	res, err := pipeline.Run(ctx, opts)
	if err != nil {
		slog.Error("export failed", "err", err)
		os.Exit(1)
	}

	// Print summary
	fmt.Printf("\nExport Summary:\n")
	fmt.Printf("  Stake Events:     %d\n", res.StakeEvents)
	fmt.Printf("  Unstake Events:   %d\n", res.Unstakes)
	fmt.Printf("  Active Positions: %d\n", res.ActiveCount)
	fmt.Printf("\nFiles written:\n")
	for _, f := range res.Files {
		fmt.Printf("  - %s\n", f)
	}

	slog.Info("export complete")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
