// Package queue names the background jobs and dispatches them to Redis
// through asynq. Payloads only carry ids; workers re-read the entities.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	QueueThumbnail = "thumbnail generation"
	QueueEmail     = "email sending"
)

const (
	TypeThumbnail    = "file:thumbnail"
	TypeWelcomeEmail = "user:welcome_email"
)

type ThumbnailPayload struct {
	FileID string `json:"fileId"`
	UserID string `json:"userId"`
}

type WelcomeEmailPayload struct {
	UserID string `json:"userId"`
}

// Dispatcher durably records a job. A nil error means the job will be
// delivered at least once, whether or not a worker is running right now.
type Dispatcher interface {
	Enqueue(ctx context.Context, queue, taskType string, payload any) error
	Close() error
}

// EnqueueThumbnail asks for the thumbnails of an image file.
func EnqueueThumbnail(ctx context.Context, d Dispatcher, fileID, userID string) error {
	return d.Enqueue(ctx, QueueThumbnail, TypeThumbnail, ThumbnailPayload{FileID: fileID, UserID: userID})
}

// EnqueueWelcomeEmail asks for the signup greeting of a user.
func EnqueueWelcomeEmail(ctx context.Context, d Dispatcher, userID string) error {
	return d.Enqueue(ctx, QueueEmail, TypeWelcomeEmail, WelcomeEmailPayload{UserID: userID})
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// AsynqDispatcher enqueues jobs with a retry budget and a per-task timeout.
type AsynqDispatcher struct {
	client   enqueuer
	maxRetry int
	timeout  time.Duration
	observe  func(taskType string, err error)
}

type Options struct {
	MaxRetry int
	Timeout  time.Duration
	// Observe, when set, is told about every enqueue attempt.
	Observe func(taskType string, err error)
}

func NewAsynqDispatcher(redisOpt asynq.RedisConnOpt, opts Options) *AsynqDispatcher {
	return newDispatcher(asynq.NewClient(redisOpt), opts)
}

func newDispatcher(client enqueuer, opts Options) *AsynqDispatcher {
	return &AsynqDispatcher{
		client:   client,
		maxRetry: opts.MaxRetry,
		timeout:  opts.Timeout,
		observe:  opts.Observe,
	}
}

func (d *AsynqDispatcher) Enqueue(ctx context.Context, queue, taskType string, payload any) error {
	err := d.enqueue(ctx, queue, taskType, payload)
	if d.observe != nil {
		d.observe(taskType, err)
	}
	return err
}

func (d *AsynqDispatcher) enqueue(ctx context.Context, queue, taskType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	opts := []asynq.Option{asynq.Queue(queue), asynq.MaxRetry(d.maxRetry)}
	if d.timeout > 0 {
		opts = append(opts, asynq.Timeout(d.timeout))
	}
	if _, err := d.client.EnqueueContext(ctx, asynq.NewTask(taskType, data), opts...); err != nil {
		return fmt.Errorf("enqueue %s on %q: %w", taskType, queue, err)
	}
	return nil
}

func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}

// RedisOpt parses a redis:// connection string for asynq.
func RedisOpt(connString string) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(connString)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri for queue: %w", err)
	}
	return opt, nil
}
