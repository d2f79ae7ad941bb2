package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"files-manager/backend/app"
	"files-manager/backend/common"
	"files-manager/backend/worker"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const configKey = "config"

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:    "files-manager",
		Usage:   "file management API and its background worker",
		Version: common.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to an ini config file",
				EnvVars: []string{"FM_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := common.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if _, err := common.SetupLogger(cfg.LogLevel, cfg.GinMode == gin.DebugMode); err != nil {
				return err
			}
			c.App.Metadata = map[string]any{configKey: cfg}
			return nil
		},
		After: func(c *cli.Context) error {
			_ = zap.L().Sync()
			return nil
		},
		Commands: []*cli.Command{
			serverCommand(),
			workerCommand(),
		},
	}
}

func configFrom(c *cli.Context) *common.Config {
	return c.App.Metadata[configKey].(*common.Config)
}

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "serve the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "listen port, overrides PORT"},
		},
		Action: func(c *cli.Context) error {
			cfg := configFrom(c)
			if c.IsSet("port") {
				cfg.Port = c.Int("port")
			}
			return runServer(c.Context, cfg)
		},
	}
}

func workerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "process thumbnail and email jobs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "concurrency", Usage: "jobs processed in parallel, overrides WORKER_CONCURRENCY"},
		},
		Action: func(c *cli.Context) error {
			cfg := configFrom(c)
			if c.IsSet("concurrency") {
				cfg.WorkerConcurrency = c.Int("concurrency")
			}
			return runWorker(c.Context, cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *common.Config) error {
	gin.SetMode(cfg.GinMode)
	common.SysLog("Files Manager "+common.Version+" started", zap.Int("port", cfg.Port))

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	server := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: a.Router(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		common.SysLog("Server listening", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	common.SysLog("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	common.SysLog("Server stopped")
	return nil
}

func runWorker(ctx context.Context, cfg *common.Config) error {
	common.SysLog("Files Manager worker "+common.Version+" started",
		zap.Int("concurrency", cfg.WorkerConcurrency))

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	srv := worker.NewServer(a.RedisOpt, worker.ServerConfig{
		Concurrency:     cfg.WorkerConcurrency,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	// Run blocks until SIGTERM or SIGINT and drains in-flight jobs.
	if err := srv.Run(a.Worker().ServeMux()); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	common.SysLog("Worker stopped")
	return nil
}
