// Package worker consumes the background jobs queued by the API server.
//
// Handlers return errors wrapping asynq.SkipRetry for jobs that can never
// succeed (bad payload, vanished entity, wrong file type). Any other error is
// retried by asynq with exponential backoff until the retry budget runs out
// and the task is archived.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"files-manager/backend/common"
	"files-manager/backend/library/mailer"
	"files-manager/backend/library/metrics"
	"files-manager/backend/library/queue"
	"files-manager/backend/library/storage"
	"files-manager/backend/model"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type Worker struct {
	users   model.UserStore
	files   model.FileStore
	storage storage.Storage
	mailer  mailer.Mailer
	metrics *metrics.Registry
}

func New(store model.Store, files storage.Storage, m mailer.Mailer, reg *metrics.Registry) *Worker {
	return &Worker{users: store, files: store, storage: files, mailer: m, metrics: reg}
}

func permanent(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), asynq.SkipRetry)
}

// ServeMux routes task types to handlers and counts outcomes.
func (w *Worker) ServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(w.observe)
	mux.HandleFunc(queue.TypeThumbnail, w.HandleThumbnail)
	mux.HandleFunc(queue.TypeWelcomeEmail, w.HandleWelcomeEmail)
	return mux
}

func (w *Worker) observe(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		err := next.ProcessTask(ctx, t)
		result := "ok"
		switch {
		case errors.Is(err, asynq.SkipRetry):
			result = "failed"
			common.SysError("job failed permanently", zap.String("type", t.Type()), zap.Error(err))
		case err != nil:
			result = "retry"
			common.SysError("job failed, will retry", zap.String("type", t.Type()), zap.Error(err))
		}
		if w.metrics != nil {
			w.metrics.JobsProcessed.WithLabelValues(t.Type(), result).Inc()
		}
		return err
	})
}

func (w *Worker) HandleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var p queue.WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return permanent("decode payload: %v", err)
	}
	if p.UserID == "" {
		return permanent("missing userId")
	}

	user, err := w.users.GetUserByID(ctx, p.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return permanent("user %s not found", p.UserID)
	}
	if err != nil {
		return fmt.Errorf("find user %s: %w", p.UserID, err)
	}

	common.SysLog("sending welcome email", zap.String("user_id", user.ID), zap.String("email", user.Email))
	msg, err := mailer.Welcome(user.Email, user.DisplayName())
	if err != nil {
		return permanent("render welcome mail: %v", err)
	}
	if err := w.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send welcome email to %s: %w", user.Email, err)
	}
	return nil
}
