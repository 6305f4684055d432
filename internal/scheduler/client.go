package scheduler

import (
	"crypto/tls"
	"fmt"

	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// redisClientOpt builds asynq's redis options from the configured URL.
func redisClientOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}

	clientOpt := asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	}
	if opts.TLSConfig != nil {
		clientOpt.TLSConfig = opts.TLSConfig
		if cfg.GetRedisTLSInsecure() {
			clientOpt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
		}
	}
	return clientOpt, nil
}

// Client enqueues background tasks. A nil Client is a valid no-op handle for
// deployments without redis; callers fall back to synchronous execution.
type Client struct {
	client *asynq.Client
	queue  string
	log    *logger.Logger
}

// NewClient creates the task-enqueueing client. Returns nil when no redis URL
// is configured.
func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
	if cfg.GetRedisURL() == "" {
		log.Info("no redis configured, background tasks run inline")
		return nil, nil
	}

	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  cfg.GetAsynqQueueName(),
		log:    log,
	}, nil
}

// EnqueueOrderPull schedules an on-demand pull-and-reconcile for one order.
func (c *Client) EnqueueOrderPull(orderID string) error {
	task, err := NewOrderPullTask(orderID)
	if err != nil {
		return err
	}
	info, err := c.client.Enqueue(task, asynq.Queue(c.queue), asynq.MaxRetry(3))
	if err != nil {
		return fmt.Errorf("enqueue order pull: %w", err)
	}
	c.log.Info("order pull enqueued", "order_id", orderID, "task_id", info.ID)
	return nil
}

// EnqueueConfirmationSweep schedules a catch-up confirmation sweep.
func (c *Client) EnqueueConfirmationSweep(preserveFlags bool) error {
	task, err := NewConfirmationSweepTask(preserveFlags)
	if err != nil {
		return err
	}
	info, err := c.client.Enqueue(task, asynq.Queue(c.queue))
	if err != nil {
		return fmt.Errorf("enqueue confirmation sweep: %w", err)
	}
	c.log.Info("confirmation sweep enqueued", "task_id", info.ID, "preserve_flags", preserveFlags)
	return nil
}

// Close releases the underlying redis connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
