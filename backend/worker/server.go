package worker

import (
	"context"
	"time"

	"files-manager/backend/common"
	"files-manager/backend/library/queue"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Concurrency     int
	ShutdownTimeout time.Duration
}

// NewServer builds the asynq server consuming both queues. Thumbnails get
// twice the share of email jobs.
func NewServer(redisOpt asynq.RedisConnOpt, cfg ServerConfig) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			queue.QueueThumbnail: 2,
			queue.QueueEmail:     1,
		},
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          zap.S(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			if retried >= maxRetry {
				common.SysError("job exhausted its retries",
					zap.String("type", task.Type()),
					zap.Int("retried", retried),
					zap.Error(err),
				)
			}
		}),
	})
}
