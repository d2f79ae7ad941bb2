package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"files-manager/backend/common"
	"files-manager/backend/library/mailer"
	"files-manager/backend/library/metrics"
	"files-manager/backend/library/queue"
	"files-manager/backend/library/storage"
	"files-manager/backend/model"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mutex sync.Mutex
	sent  []mailer.Message
	err   error
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type testEnv struct {
	store    *model.SQLStore
	storage  *storage.LocalStorage
	filesDir string
	mailer   *fakeMailer
	metrics  *metrics.Registry
	worker   *Worker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	store, err := model.NewSQLiteStore(filepath.Join(dir, "worker_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	filesDir := filepath.Join(dir, "files")
	local, err := storage.NewLocalStorage(filesDir)
	require.NoError(t, err)

	env := &testEnv{
		store:    store,
		storage:  local,
		filesDir: filesDir,
		mailer:   &fakeMailer{},
		metrics:  metrics.NewRegistry(),
	}
	env.worker = New(store, local, env.mailer, env.metrics)
	return env
}

func task(t *testing.T, taskType string, payload any) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(taskType, data)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 600, 300))
	for x := 0; x < 600; x += 3 {
		for y := 0; y < 300; y += 3 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (env *testEnv) createFile(t *testing.T, userID string, fileType model.FileType, data []byte) *model.File {
	t.Helper()
	ctx := context.Background()
	file := &model.File{UserID: userID, Name: "pic.png", Type: fileType, ParentID: model.RootParentID}
	if data != nil {
		file.LocalPath = env.storage.NewPath()
		require.NoError(t, env.storage.Write(ctx, file.LocalPath, data))
	}
	require.NoError(t, env.store.CreateFile(ctx, file))
	return file
}

func TestHandleThumbnail_GeneratesAllSizes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	file := env.createFile(t, "u1", model.FileTypeImage, testPNG(t))
	job := task(t, queue.TypeThumbnail, queue.ThumbnailPayload{FileID: file.ID, UserID: "u1"})

	require.NoError(t, env.worker.HandleThumbnail(ctx, job))

	first := make(map[int][]byte)
	for _, width := range common.ThumbnailSizes {
		data, err := env.storage.Read(ctx, storage.ThumbnailPath(file.LocalPath, width))
		require.NoError(t, err)
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, width, cfg.Width)
		assert.Equal(t, width/2, cfg.Height)
		first[width] = data
	}

	// a redelivered job rewrites the same bytes at the same paths
	require.NoError(t, env.worker.HandleThumbnail(ctx, job))
	for _, width := range common.ThumbnailSizes {
		data, err := env.storage.Read(ctx, storage.ThumbnailPath(file.LocalPath, width))
		require.NoError(t, err)
		assert.Equal(t, first[width], data)
	}

	entries, err := os.ReadDir(env.filesDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1+len(common.ThumbnailSizes))
}

func TestHandleThumbnail_PermanentFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	img := env.createFile(t, "u1", model.FileTypeImage, testPNG(t))
	text := env.createFile(t, "u1", model.FileTypeFile, []byte("hello"))

	tests := []struct {
		name string
		task *asynq.Task
	}{
		{"bad json", asynq.NewTask(queue.TypeThumbnail, []byte("{"))},
		{"missing fileId", task(t, queue.TypeThumbnail, queue.ThumbnailPayload{UserID: "u1"})},
		{"missing userId", task(t, queue.TypeThumbnail, queue.ThumbnailPayload{FileID: img.ID})},
		{"nonexistent file", task(t, queue.TypeThumbnail, queue.ThumbnailPayload{FileID: "65f000000000000000000000", UserID: "u1"})},
		{"malformed file id", task(t, queue.TypeThumbnail, queue.ThumbnailPayload{FileID: "nope", UserID: "u1"})},
		{"other owner", task(t, queue.TypeThumbnail, queue.ThumbnailPayload{FileID: img.ID, UserID: "u2"})},
		{"not an image", task(t, queue.TypeThumbnail, queue.ThumbnailPayload{FileID: text.ID, UserID: "u1"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.worker.HandleThumbnail(ctx, tt.task)
			require.Error(t, err)
			assert.True(t, errors.Is(err, asynq.SkipRetry))
		})
	}

	// nothing was written besides the two sources
	entries, err := os.ReadDir(env.filesDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHandleThumbnail_TransientFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	missing := &model.File{UserID: "u1", Name: "gone.png", Type: model.FileTypeImage, ParentID: "0", LocalPath: env.storage.NewPath()}
	require.NoError(t, env.store.CreateFile(ctx, missing))
	err := env.worker.HandleThumbnail(ctx, task(t, queue.TypeThumbnail, queue.ThumbnailPayload{FileID: missing.ID, UserID: "u1"}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))

	broken := env.createFile(t, "u1", model.FileTypeImage, []byte("not a picture"))
	err = env.worker.HandleThumbnail(ctx, task(t, queue.TypeThumbnail, queue.ThumbnailPayload{FileID: broken.ID, UserID: "u1"}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleWelcomeEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := &model.User{Email: "bob@dylan.com", Password: "digest"}
	require.NoError(t, env.store.CreateUser(ctx, user))

	require.NoError(t, env.worker.HandleWelcomeEmail(ctx, task(t, queue.TypeWelcomeEmail, queue.WelcomeEmailPayload{UserID: user.ID})))
	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "bob@dylan.com", env.mailer.sent[0].To)
	assert.Contains(t, env.mailer.sent[0].HTML, "Hello bob@dylan.com,")
}

func TestHandleWelcomeEmail_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.worker.HandleWelcomeEmail(ctx, task(t, queue.TypeWelcomeEmail, queue.WelcomeEmailPayload{}))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = env.worker.HandleWelcomeEmail(ctx, task(t, queue.TypeWelcomeEmail, queue.WelcomeEmailPayload{UserID: "65f000000000000000000000"}))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, env.mailer.sent)

	user := &model.User{Email: "bob@dylan.com", Password: "digest"}
	require.NoError(t, env.store.CreateUser(ctx, user))
	env.mailer.err = errors.New("421 try again later")
	err = env.worker.HandleWelcomeEmail(ctx, task(t, queue.TypeWelcomeEmail, queue.WelcomeEmailPayload{UserID: user.ID}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestServeMux_CountsOutcomes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mux := env.worker.ServeMux()
	user := &model.User{Email: "bob@dylan.com", Password: "digest"}
	require.NoError(t, env.store.CreateUser(ctx, user))

	require.NoError(t, mux.ProcessTask(ctx, task(t, queue.TypeWelcomeEmail, queue.WelcomeEmailPayload{UserID: user.ID})))
	require.Error(t, mux.ProcessTask(ctx, task(t, queue.TypeThumbnail, queue.ThumbnailPayload{})))
	env.mailer.err = errors.New("down")
	require.Error(t, mux.ProcessTask(ctx, task(t, queue.TypeWelcomeEmail, queue.WelcomeEmailPayload{UserID: user.ID})))

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.JobsProcessed.WithLabelValues(queue.TypeWelcomeEmail, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.JobsProcessed.WithLabelValues(queue.TypeWelcomeEmail, "retry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.JobsProcessed.WithLabelValues(queue.TypeThumbnail, "failed")))
}
