package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// group is the consumer group shared by all workers of a stage.
	group = "workers"
	// jobField is the stream field carrying the encoded job.
	jobField = "job"
)

// Client is a Redis Streams work queue with one stream per pipeline stage
// and a sorted-set schedule for delayed dispatch. Acknowledgment is
// deferred until after the handler has persisted, so a crash mid-handler
// causes redelivery.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient wraps an existing Redis connection.
func NewClient(rdb *redis.Client, prefix string) *Client {
	if prefix == "" {
		prefix = "lorecast"
	}
	return &Client{rdb: rdb, prefix: prefix}
}

// StreamName returns the full stream key for a stage.
func (c *Client) StreamName(stage Stage) string {
	return fmt.Sprintf("%s:jobs:%s", c.prefix, stage)
}

func (c *Client) scheduleKey() string {
	return c.prefix + ":scheduled"
}

// EnsureGroups creates the consumer group on every stage stream.
func (c *Client) EnsureGroups(ctx context.Context) error {
	for _, stage := range AllStages() {
		err := c.rdb.XGroupCreateMkStream(ctx, c.StreamName(stage), group, "0").Err()
		if err != nil && !isBusyGroup(err) {
			return fmt.Errorf("create consumer group for %s: %w", stage, err)
		}
	}
	return nil
}

func isBusyGroup(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}

// Enqueue sends a job to its stage's stream immediately.
func (c *Client) Enqueue(ctx context.Context, job *Job) error {
	encoded, err := job.encode()
	if err != nil {
		return err
	}
	err = c.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: c.StreamName(job.Stage),
		Values: map[string]any{jobField: encoded},
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueue %s job %s: %w", job.Stage, job.ID, err)
	}
	return nil
}

// EnqueueAfter schedules a job for delivery once the delay has elapsed. The
// job sits in a sorted set scored by its due time until PromoteDue moves it
// onto its stage stream. This implements both the deliberate sync-dispatch
// delay and retry backoff redelivery.
func (c *Client) EnqueueAfter(ctx context.Context, job *Job, delay time.Duration) error {
	if delay <= 0 {
		return c.Enqueue(ctx, job)
	}
	encoded, err := job.encode()
	if err != nil {
		return err
	}
	due := time.Now().Add(delay)
	err = c.rdb.ZAdd(ctx, c.scheduleKey(), redis.Z{
		Score:  float64(due.UnixMilli()),
		Member: encoded,
	}).Err()
	if err != nil {
		return fmt.Errorf("schedule %s job %s: %w", job.Stage, job.ID, err)
	}
	return nil
}

// PromoteDue moves every scheduled job whose due time has passed onto its
// stage stream. ZRem arbitrates between concurrent promoters: only the
// caller that removes the member delivers it.
func (c *Client) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	members, err := c.rdb.ZRangeByScore(ctx, c.scheduleKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("scan scheduled jobs: %w", err)
	}

	promoted := 0
	for _, member := range members {
		removed, err := c.rdb.ZRem(ctx, c.scheduleKey(), member).Result()
		if err != nil {
			return promoted, fmt.Errorf("claim scheduled job: %w", err)
		}
		if removed == 0 {
			continue
		}
		job, err := decodeJob(member)
		if err != nil {
			return promoted, err
		}
		if err := c.Enqueue(ctx, job); err != nil {
			return promoted, err
		}
		promoted++
	}
	return promoted, nil
}

// Delivery is one dequeued job along with the bookkeeping needed to ack it.
type Delivery struct {
	Job       *Job
	MessageID string
	stage     Stage
}

// Dequeue blocks up to the given duration for one job on a stage stream.
// A nil Delivery with nil error means the block timed out empty.
func (c *Client) Dequeue(ctx context.Context, stage Stage, consumer string, block time.Duration) (*Delivery, error) {
	streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{c.StreamName(stage), ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue from %s: %w", stage, err)
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			raw, ok := message.Values[jobField].(string)
			if !ok {
				// Malformed message; ack it away so it cannot wedge the stream.
				_ = c.Ack(ctx, stage, message.ID)
				continue
			}
			job, err := decodeJob(raw)
			if err != nil {
				_ = c.Ack(ctx, stage, message.ID)
				return nil, err
			}
			return &Delivery{Job: job, MessageID: message.ID, stage: stage}, nil
		}
	}
	return nil, nil
}

// Ack acknowledges a delivered message.
func (c *Client) Ack(ctx context.Context, stage Stage, messageID string) error {
	if err := c.rdb.XAck(ctx, c.StreamName(stage), group, messageID).Err(); err != nil {
		return fmt.Errorf("ack %s message %s: %w", stage, messageID, err)
	}
	return nil
}

// Reclaim takes over deliveries that have sat unacked longer than minIdle,
// typically because the worker that received them died. Reclaimed jobs are
// returned for normal processing under the calling consumer's name.
func (c *Client) Reclaim(ctx context.Context, stage Stage, consumer string, minIdle time.Duration) ([]*Delivery, error) {
	messages, _, err := c.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.StreamName(stage),
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    16,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reclaim from %s: %w", stage, err)
	}

	deliveries := make([]*Delivery, 0, len(messages))
	for _, message := range messages {
		raw, ok := message.Values[jobField].(string)
		if !ok {
			_ = c.Ack(ctx, stage, message.ID)
			continue
		}
		job, err := decodeJob(raw)
		if err != nil {
			_ = c.Ack(ctx, stage, message.ID)
			continue
		}
		deliveries = append(deliveries, &Delivery{Job: job, MessageID: message.ID, stage: stage})
	}
	return deliveries, nil
}

// PendingCount returns how many delivered-but-unacked messages a stage has.
func (c *Client) PendingCount(ctx context.Context, stage Stage) (int64, error) {
	pending, err := c.rdb.XPending(ctx, c.StreamName(stage), group).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("pending for %s: %w", stage, err)
	}
	return pending.Count, nil
}
