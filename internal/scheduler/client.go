package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"openhouse_backend/platform/config"
	"openhouse_backend/platform/redisclient"

	"github.com/hibiken/asynq"
)

const (
	defaultQueue = "default"

	followUpMaxRetry  = 5
	followUpRetention = 24 * time.Hour
)

// FollowUpScheduler queues the post-visit email for one check-in.
type FollowUpScheduler interface {
	ScheduleFollowUp(ctx context.Context, payload FollowUpPayload, runAt time.Time) error
}

// enqueuer is the part of *asynq.Client the scheduler calls.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client enqueues follow-ups into Redis for the worker process. A nil
// *Client accepts every call and does nothing.
type Client struct {
	enq   enqueuer
	queue string
}

var _ FollowUpScheduler = (*Client)(nil)

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}
	return &Client{enq: asynq.NewClient(opt), queue: queueName(cfg)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.enq == nil {
		return nil
	}
	return c.enq.Close()
}

// ScheduleFollowUp is idempotent per lead: a second enqueue for the same
// lead is accepted and dropped.
func (c *Client) ScheduleFollowUp(ctx context.Context, payload FollowUpPayload, runAt time.Time) error {
	if c == nil || c.enq == nil {
		return nil
	}

	task, err := NewFollowUpTask(payload)
	if err != nil {
		return err
	}

	_, err = c.enq.EnqueueContext(ctx, task, c.followUpOptions(payload, runAt)...)
	switch {
	case err == nil, errors.Is(err, asynq.ErrTaskIDConflict), errors.Is(err, asynq.ErrDuplicateTask):
		return nil
	default:
		return fmt.Errorf("enqueue %s: %w", TaskOpenHouseFollowUp, err)
	}
}

func (c *Client) followUpOptions(payload FollowUpPayload, runAt time.Time) []asynq.Option {
	return []asynq.Option{
		asynq.ProcessAt(runAt),
		asynq.Queue(c.queue),
		asynq.TaskID(followUpTaskID(payload.LeadID)),
		asynq.MaxRetry(followUpMaxRetry),
		asynq.Retention(followUpRetention),
	}
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redisclient.ParseOptions(redisURL, tlsInsecure)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return defaultQueue
}
