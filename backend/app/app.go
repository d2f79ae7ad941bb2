// Package app wires the clients shared by the API server and the worker.
package app

import (
	"context"
	"errors"
	"fmt"

	"files-manager/backend/api/handler"
	"files-manager/backend/api/route"
	"files-manager/backend/common"
	"files-manager/backend/library/kv"
	"files-manager/backend/library/mailer"
	"files-manager/backend/library/metrics"
	"files-manager/backend/library/queue"
	"files-manager/backend/library/storage"
	"files-manager/backend/model"
	"files-manager/backend/service"
	"files-manager/backend/worker"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App owns every long-lived client. Nothing in the process reaches them
// through globals.
type App struct {
	Config  *common.Config
	Redis   redis.UniversalClient
	KV      kv.Store
	Store   model.Store
	Storage storage.Storage
	Jobs    queue.Dispatcher
	Mailer  mailer.Mailer
	Metrics *metrics.Registry

	RedisOpt asynq.RedisConnOpt
}

// New connects to Redis, the document store and the file storage. On failure
// whatever was already opened is closed again.
func New(ctx context.Context, cfg *common.Config) (_ *App, err error) {
	a := &App{Config: cfg, Metrics: metrics.NewRegistry()}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	rdb, err := kv.NewRedisClient(ctx, cfg.RedisConnString)
	if err != nil {
		return nil, err
	}
	a.Redis = rdb
	a.KV = kv.NewRedisStore(rdb)
	common.SysLog("Redis connected")

	if a.Store, err = model.OpenStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	if a.Storage, err = storage.New(ctx, cfg); err != nil {
		return nil, fmt.Errorf("open file storage: %w", err)
	}

	if a.RedisOpt, err = queue.RedisOpt(cfg.RedisConnString); err != nil {
		return nil, err
	}
	a.Jobs = queue.NewAsynqDispatcher(a.RedisOpt, queue.Options{
		MaxRetry: cfg.JobMaxRetry,
		Timeout:  cfg.JobTimeout,
		Observe:  a.Metrics.ObserveEnqueue,
	})
	a.Mailer = mailer.FromConfig(cfg)
	return a, nil
}

func (a *App) Handler() *handler.Handler {
	return &handler.Handler{
		Auth:    service.NewAuthService(a.Store, a.KV),
		Users:   service.NewUserService(a.Store, a.Jobs),
		Files:   service.NewFileService(a.Store, a.Storage, a.Jobs),
		Store:   a.Store,
		KV:      a.KV,
		Metrics: a.Metrics,
	}
}

// Router builds the gin engine serving the API.
func (a *App) Router() *gin.Engine {
	engine := gin.New()
	route.SetRouter(engine, a.Handler(), route.Options{
		RequestTimeout:     a.Config.RequestTimeout,
		RateLimitPerMinute: a.Config.RateLimitPerMinute,
		Metrics:            a.Metrics,
	})
	return engine
}

func (a *App) Worker() *worker.Worker {
	return worker.New(a.Store, a.Storage, a.Mailer, a.Metrics)
}

// Close releases the dispatcher, the document store and Redis, in that order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Jobs != nil {
		if err := a.Jobs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close document store: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		common.SysError("shutdown incomplete", zap.Error(err))
		return err
	}
	return nil
}
