package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"files-manager/backend/common"
	"files-manager/backend/library/queue"
	"files-manager/backend/library/storage"
	"files-manager/backend/library/thumbnail"
	"files-manager/backend/model"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HandleThumbnail writes <path>_<width> for every thumbnail width. Outputs are
// overwritten, so a redelivered job converges on the same files.
func (w *Worker) HandleThumbnail(ctx context.Context, t *asynq.Task) error {
	var p queue.ThumbnailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return permanent("decode payload: %v", err)
	}
	if p.FileID == "" {
		return permanent("missing fileId")
	}
	if p.UserID == "" {
		return permanent("missing userId")
	}

	file, err := w.files.GetFile(ctx, p.UserID, p.FileID)
	if errors.Is(err, model.ErrNotFound) {
		return permanent("file %s not found", p.FileID)
	}
	if err != nil {
		return fmt.Errorf("find file %s: %w", p.FileID, err)
	}
	if file.Type != model.FileTypeImage {
		return permanent("file %s is a %s, not an image", file.ID, file.Type)
	}

	src, err := w.storage.Read(ctx, file.LocalPath)
	if err != nil {
		return fmt.Errorf("read source of %s: %w", file.ID, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, width := range common.ThumbnailSizes {
		width := width
		g.Go(func() error {
			out, err := thumbnail.Generate(src, width)
			if err != nil {
				return fmt.Errorf("generate %dpx thumbnail of %s: %w", width, file.ID, err)
			}
			return w.storage.Write(ctx, storage.ThumbnailPath(file.LocalPath, width), out)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	common.SysLog("thumbnails generated", zap.String("file_id", file.ID), zap.String("path", file.LocalPath))
	return nil
}
