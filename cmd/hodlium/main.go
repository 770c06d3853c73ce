package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hashkey-chain/hodlium/internal/api"
	"github.com/hashkey-chain/hodlium/internal/api/handler"
	"github.com/hashkey-chain/hodlium/internal/chain"
	"github.com/hashkey-chain/hodlium/internal/config"
	"github.com/hashkey-chain/hodlium/internal/events"
	"github.com/hashkey-chain/hodlium/internal/exportjob"
	"github.com/hashkey-chain/hodlium/internal/refresh"
	"github.com/hashkey-chain/hodlium/internal/report"
	"github.com/hashkey-chain/hodlium/internal/rewards"
	"github.com/hashkey-chain/hodlium/internal/vehsk"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	// Setup logging
	setupLogging(cfg.LogLevel)

	slog.Info("starting hodlium",
		"chain_id", cfg.ChainID,
		"staking_contract", cfg.Contracts.Staking.Hex(),
		"vehsk_contract", cfg.Contracts.VeHSK.Hex(),
		"http_enabled", cfg.HTTPEnabled,
		"queue_enabled", cfg.RedisURL != "",
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

	// Contract read surfaces
	stakingReader := chain.NewStakingReader(client, cfg.Contracts.Staking)
	vehskReader := chain.NewVeHSKReader(client, cfg.Contracts.VeHSK)
	fetcher := events.NewFetcher(client, cfg.Contracts.Staking)
	estimator := rewards.NewEstimator()
	calculator := vehsk.NewCalculator(stakingReader, client)

	// Optional signing key for mint submission
	sender, err := chain.NewSender(client, cfg.PrivateKey)
	if err != nil {
		slog.Error("failed to create sender", "err", err)
		os.Exit(1)
	}
	operator := cfg.Operator
	if operator == (common.Address{}) && sender.Connected() {
		operator = sender.From()
	}

	// Periodic snapshot of the operator's escrow state
	refresher := refresh.New(calculator, vehskReader, operator, cfg.RefreshInterval)

	// A confirmed mint invalidates the snapshot, so refresh right after.
	minter := vehsk.NewMinter(sender, vehskReader, cfg.Contracts.VeHSK, cfg.ChainID, func() {
		refreshCtx, refreshCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer refreshCancel()
		if err := refresher.Refresh(refreshCtx); err != nil {
			slog.Warn("post-mint refresh failed", "err", err)
		}
	})

	// Report pipeline
	generator := report.NewGenerator(stakingReader, estimator)
	pipeline := report.NewPipeline(fetcher, generator, cfg.OutputDir)

	g, ctx := errgroup.WithContext(ctx)

	// Export queue is optional: without Redis, exports run only via the CLI.
	var pub *exportjob.Publisher
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("failed to parse redis url", "err", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		pub, err = exportjob.NewPublisher(redisClient, cfg.ExportsTopic)
		if err != nil {
			slog.Error("failed to create publisher", "err", err)
			os.Exit(1)
		}
		defer pub.Close()

		wrk, err := exportjob.NewWorker(exportjob.Config{
			RedisClient:   redisClient,
			Pipeline:      pipeline,
			Topic:         cfg.ExportsTopic,
			ConsumerGroup: cfg.ConsumerGroup,
		})
		if err != nil {
			slog.Error("failed to create worker", "err", err)
			os.Exit(1)
		}
		defer wrk.Close()

		g.Go(func() error {
			slog.Info("starting export worker")
			return wrk.Run(ctx)
		})
		g.Go(func() error {
			return runPeriodicQueueStats(ctx, wrk, time.Minute)
		})
	}

	g.Go(func() error {
		slog.Info("starting snapshot refresher", "account", operator.Hex(), "interval", cfg.RefreshInterval)
		return refresher.Run(ctx)
	})

	if cfg.HTTPEnabled {
		apiLogger, err := zap.NewProduction()
		if err != nil {
			slog.Error("failed to create api logger", "err", err)
			os.Exit(1)
		}
		defer apiLogger.Sync()

		h := &handler.Handler{
			Logger:      apiLogger,
			AdminToken:  cfg.AdminToken,
			Operator:    operator,
			Fetcher:     fetcher,
			Estimator:   estimator,
			Overview:    stakingReader,
			Accruer:     calculator,
			Mintable:    vehskReader,
			Minter:      minter,
			Refresher:   refresher,
			DeployBlock: cfg.DeployBlock,
		}
		if pub != nil {
			h.Publisher = pub
		}

		srv, err := api.NewServer(h, apiLogger, cfg.HTTPAddr)
		if err != nil {
			slog.Error("failed to create api server", "err", err)
			os.Exit(1)
		}
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		slog.Error("hodlium error", "err", err)
		os.Exit(1)
	}

	slog.Info("shutdown complete")
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

// runPeriodicQueueStats logs export queue depth on an interval.
func runPeriodicQueueStats(ctx context.Context, wrk *exportjob.Worker, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			wrk.LogQueueStats(ctx)
		}
	}
}
