package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"files-manager/backend/library/kv"
	"files-manager/backend/library/storage"
	"files-manager/backend/model"

	"github.com/stretchr/testify/require"
)

type enqueued struct {
	Queue   string
	Type    string
	Payload any
}

type recordingDispatcher struct {
	mutex sync.Mutex
	jobs  []enqueued
	err   error
}

func (d *recordingDispatcher) Enqueue(ctx context.Context, queue, taskType string, payload any) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, enqueued{Queue: queue, Type: taskType, Payload: payload})
	return nil
}

func (d *recordingDispatcher) Close() error { return nil }

type testEnv struct {
	store   *model.SQLStore
	tokens  *kv.MemoryStore
	storage *storage.LocalStorage
	jobs    *recordingDispatcher
	auth    *AuthService
	users   *UserService
	files   *FileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	store, err := model.NewSQLiteStore(filepath.Join(dir, "service_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	local, err := storage.NewLocalStorage(filepath.Join(dir, "files"))
	require.NoError(t, err)

	env := &testEnv{
		store:   store,
		tokens:  kv.NewMemoryStore(),
		storage: local,
		jobs:    &recordingDispatcher{},
	}
	env.auth = NewAuthService(store, env.tokens)
	env.users = NewUserService(store, env.jobs)
	env.files = NewFileService(store, local, env.jobs)
	return env
}

var errBoom = errors.New("boom")
