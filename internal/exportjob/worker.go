package exportjob

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/hashkey-chain/hodlium/internal/report"
)

// pipelineRunner runs one export pipeline pass.
type pipelineRunner interface {
	Run(ctx context.Context, opts report.RunOptions) (*report.Result, error)
}

// Config configures the worker.
type Config struct {
	RedisClient   redis.UniversalClient
	Pipeline      pipelineRunner
	Topic         string
	ConsumerGroup string
}

// QueueStats holds queue statistics.
type QueueStats struct {
	StreamLength int64
	Pending      int64
	Consumers    int64
}

// Worker consumes export jobs from Redis Streams and runs the report
// pipeline for each.
type Worker struct {
	router        *message.Router
	pipeline      pipelineRunner
	redisClient   redis.UniversalClient
	topic         string
	consumerGroup string
}

// NewWorker creates a Worker.
func NewWorker(cfg Config) (*Worker, error) {
	logger := watermill.NewSlogLogger(nil)

	sub, err := redisstream.NewSubscriber(
		redisstream.SubscriberConfig{
			Client:        cfg.RedisClient,
			ConsumerGroup: cfg.ConsumerGroup,
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}

	w := &Worker{
		router:        router,
		pipeline:      cfg.Pipeline,
		redisClient:   cfg.RedisClient,
		topic:         cfg.Topic,
		consumerGroup: cfg.ConsumerGroup,
	}

	router.AddNoPublisherHandler(
		"run-export",
		cfg.Topic,
		sub,
		w.handleJob,
	)

	return w, nil
}

// handleJob runs the pipeline for a single export job message.
func (w *Worker) handleJob(msg *message.Message) error {
	start := time.Now()
	msgUUID := msg.UUID

	var job Job
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		slog.Warn("worker invalid payload",
			"msg_uuid", msgUUID,
			"len", len(msg.Payload),
			"err", err,
		)
		return nil // ack invalid messages to avoid infinite retry
	}

	slog.Info("worker export start",
		"from_block", job.FromBlock,
		"latest", job.Latest,
		"msg_uuid", msgUUID,
	)

	ctx := context.Background()
	res, err := w.pipeline.Run(ctx, report.RunOptions{
		FromBlock: job.FromBlock,
		ToBlock:   job.ToBlock,
		Latest:    job.Latest,
		Account:   job.Account,
	})
	if err != nil {
		duration := time.Since(start)
		slog.Error("worker export failed",
			"from_block", job.FromBlock,
			"msg_uuid", msgUUID,
			"duration_ms", duration.Milliseconds(),
			"err", err,
		)
		// Delay before retry to avoid hammering on errors
		time.Sleep(5 * time.Second)
		return err // will be redelivered
	}

	duration := time.Since(start)
	slog.Info("worker export done",
		"from_block", job.FromBlock,
		"active", res.ActiveCount,
		"files", len(res.Files),
		"msg_uuid", msgUUID,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

// Run starts the worker. It blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	return w.router.Run(ctx)
}

// Close closes the worker.
func (w *Worker) Close() error {
	return w.router.Close()
}

// QueueStats returns current queue statistics.
func (w *Worker) QueueStats(ctx context.Context) (QueueStats, error) {
	var stats QueueStats

	length, err := w.redisClient.XLen(ctx, w.topic).Result()
	if err != nil {
		return stats, err
	}
	stats.StreamLength = length

	groups, err := w.redisClient.XInfoGroups(ctx, w.topic).Result()
	if err != nil {
		// Stream might not exist yet
		return stats, nil
	}

	for _, g := range groups {
		if g.Name == w.consumerGroup {
			stats.Pending = g.Pending
			stats.Consumers = g.Consumers
			break
		}
	}

	return stats, nil
}

// LogQueueStats logs current queue statistics.
func (w *Worker) LogQueueStats(ctx context.Context) {
	stats, err := w.QueueStats(ctx)
	if err != nil {
		slog.Warn("worker queue stats error", "err", err)
		return
	}

	slog.Info("worker queue stats",
		"stream_length", stats.StreamLength,
		"pending", stats.Pending,
		"consumers", stats.Consumers,
	)
}
