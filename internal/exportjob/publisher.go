// Package exportjob queues report-export requests through Redis Streams so
// the HTTP API can accept an export and return immediately while a worker
// runs the pipeline in the background.
package exportjob

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

// Job is one queued export request.
type Job struct {
	FromBlock uint64          `json:"from_block"`
	ToBlock   uint64          `json:"to_block,omitempty"`
	Latest    bool            `json:"latest"`
	Account   *common.Address `json:"account,omitempty"`
}

// Publisher publishes export jobs to a Redis stream.
type Publisher struct {
	pub         message.Publisher
	redisClient redis.UniversalClient
	topic       string
}

// NewPublisher creates a Publisher on the given topic.
func NewPublisher(redisClient redis.UniversalClient, topic string) (*Publisher, error) {
	logger := watermill.NewSlogLogger(nil)

	pub, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		pub:         pub,
		redisClient: redisClient,
		topic:       topic,
	}, nil
}

// Publish enqueues one export job and returns its message id.
func (p *Publisher) Publish(ctx context.Context, job Job) (string, error) {
	start := time.Now()

	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal export job: %w", err)
	}

	msgUUID := watermill.NewUUID()
	msg := message.NewMessage(msgUUID, payload)

	err = p.pub.Publish(p.topic, msg)
	duration := time.Since(start)

	if err != nil {
		slog.Error("redis publish failed",
			"from_block", job.FromBlock,
			"latest", job.Latest,
			"msg_uuid", msgUUID,
			"duration_ms", duration.Milliseconds(),
			"err", err,
		)
		return "", err
	}

	slog.Info("redis publish ok",
		"from_block", job.FromBlock,
		"latest", job.Latest,
		"msg_uuid", msgUUID,
		"duration_ms", duration.Milliseconds(),
	)
	return msgUUID, nil
}

// Close closes the publisher.
func (p *Publisher) Close() error {
	return p.pub.Close()
}

// QueueLength returns the number of messages in the Redis stream.
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	return p.redisClient.XLen(ctx, p.topic).Result()
}

// Topic returns the Redis stream topic name.
func (p *Publisher) Topic() string {
	return p.topic
}
