package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"files-manager/backend/common"
	fmerrors "files-manager/backend/common/errors"
	"files-manager/backend/library/queue"
	"files-manager/backend/library/storage"
	"files-manager/backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestUpload_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	folder, err := env.files.Upload(ctx, "u1", UploadRequest{Name: "docs", Type: "folder"})
	require.NoError(t, err)
	text, err := env.files.Upload(ctx, "u1", UploadRequest{Name: "a.txt", Type: "file", Data: b64("hi")})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  UploadRequest
		msg  string
	}{
		{"missing name", UploadRequest{Type: "file", Data: b64("x")}, fmerrors.MsgMissingName},
		{"missing type", UploadRequest{Name: "a"}, fmerrors.MsgMissingType},
		{"unknown type", UploadRequest{Name: "a", Type: "video"}, fmerrors.MsgMissingType},
		{"missing data", UploadRequest{Name: "a", Type: "file"}, fmerrors.MsgMissingData},
		{"bad base64", UploadRequest{Name: "a", Type: "image", Data: "%%%"}, fmerrors.MsgMissingData},
		{"unknown parent", UploadRequest{Name: "a", Type: "folder", ParentID: "65f000000000000000000000"}, fmerrors.MsgParentNotFound},
		{"parent is a file", UploadRequest{Name: "a", Type: "folder", ParentID: text.ID}, fmerrors.MsgParentNotFolder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.files.Upload(ctx, "u1", tt.req)
			assert.True(t, fmerrors.IsInvalid(err))
			assert.Equal(t, tt.msg, fmerrors.Message(err))
		})
	}

	// another user's folder is not a valid parent
	_, err = env.files.Upload(ctx, "u2", UploadRequest{Name: "a", Type: "folder", ParentID: folder.ID})
	assert.Equal(t, fmerrors.MsgParentNotFound, fmerrors.Message(err))
}

func TestUpload_StoresDataAndQueuesThumbnails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folder, err := env.files.Upload(ctx, "u1", UploadRequest{Name: "images", Type: "folder"})
	require.NoError(t, err)
	assert.Equal(t, model.RootParentID, folder.ParentID)
	assert.Empty(t, folder.LocalPath)

	img, err := env.files.Upload(ctx, "u1", UploadRequest{
		Name:     "pic.png",
		Type:     "image",
		ParentID: folder.ID,
		IsPublic: true,
		Data:     b64("not really a png"),
	})
	require.NoError(t, err)
	assert.Equal(t, folder.ID, img.ParentID)
	assert.True(t, img.IsPublic)

	data, err := env.storage.Read(ctx, img.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "not really a png", string(data))

	require.Len(t, env.jobs.jobs, 1)
	assert.Equal(t, queue.QueueThumbnail, env.jobs.jobs[0].Queue)
	assert.Equal(t, queue.ThumbnailPayload{FileID: img.ID, UserID: "u1"}, env.jobs.jobs[0].Payload)

	_, err = env.files.Upload(ctx, "u1", UploadRequest{Name: "a.txt", Type: "file", Data: b64("x")})
	require.NoError(t, err)
	assert.Len(t, env.jobs.jobs, 1, "only images get thumbnails")
}

func TestUpload_EnqueueFailureKeepsFile(t *testing.T) {
	env := newTestEnv(t)
	env.jobs.err = errBoom
	ctx := context.Background()

	img, err := env.files.Upload(ctx, "u1", UploadRequest{Name: "pic.png", Type: "image", Data: b64("x")})
	require.NoError(t, err)
	_, err = env.files.Get(ctx, "u1", img.ID)
	assert.NoError(t, err)
}

type failingFileStore struct {
	*model.SQLStore
}

func (failingFileStore) CreateFile(ctx context.Context, file *model.File) error {
	return errBoom
}

func TestUpload_CreateFailureRemovesData(t *testing.T) {
	env := newTestEnv(t)
	files := NewFileService(failingFileStore{env.store}, env.storage, env.jobs)
	ctx := context.Background()

	_, err := files.Upload(ctx, "u1", UploadRequest{Name: "pic.png", Type: "image", Data: b64("x")})
	require.Error(t, err)
	assert.Equal(t, fmerrors.KindInternal, fmerrors.KindOf(err))
	assert.ErrorIs(t, err, errBoom)

	entries, err := os.ReadDir(filepath.Dir(env.storage.NewPath()))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, env.jobs.jobs)
}

func TestGetAndPublish_OwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	file, err := env.files.Upload(ctx, "u1", UploadRequest{Name: "a.txt", Type: "file", Data: b64("x")})
	require.NoError(t, err)

	got, err := env.files.Get(ctx, "u1", file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)

	_, err = env.files.Get(ctx, "u2", file.ID)
	assert.True(t, fmerrors.IsNotFound(err))
	_, err = env.files.Get(ctx, "u1", "not-an-id")
	assert.True(t, fmerrors.IsNotFound(err))

	published, err := env.files.SetPublished(ctx, "u1", file.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublic)

	_, err = env.files.SetPublished(ctx, "u2", file.ID, false)
	assert.True(t, fmerrors.IsNotFound(err))

	unpublished, err := env.files.SetPublished(ctx, "u1", file.ID, false)
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublic)
}

func TestList_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := env.files.Upload(ctx, "u1", UploadRequest{Name: fmt.Sprintf("f%d", i), Type: "folder"})
		require.NoError(t, err)
	}
	_, err := env.files.Upload(ctx, "u2", UploadRequest{Name: "other", Type: "folder"})
	require.NoError(t, err)

	first, err := env.files.List(ctx, "u1", "", 0)
	require.NoError(t, err)
	assert.Len(t, first, 20)

	second, err := env.files.List(ctx, "u1", "0", 1)
	require.NoError(t, err)
	assert.Len(t, second, 5)

	negative, err := env.files.List(ctx, "u1", "0", -3)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, negative[0].ID)

	huge, err := env.files.List(ctx, "u1", "0", math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, huge)

	empty, err := env.files.List(ctx, "u1", first[0].ID, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

type pageRecorder struct {
	*model.SQLStore
	pages []int
}

func (r *pageRecorder) ListFiles(ctx context.Context, userID, parentID string, page, pageSize int) ([]*model.File, error) {
	r.pages = append(r.pages, page)
	return r.SQLStore.ListFiles(ctx, userID, parentID, page, pageSize)
}

func TestList_ClampsPage(t *testing.T) {
	env := newTestEnv(t)
	recorder := &pageRecorder{SQLStore: env.store}
	files := NewFileService(recorder, env.storage, env.jobs)
	ctx := context.Background()

	for _, page := range []int{-1, 3, math.MaxInt, common.MaxPage + 1} {
		_, err := files.List(ctx, "u1", "0", page)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{0, 3, common.MaxPage, common.MaxPage}, recorder.pages)
	assert.Positive(t, common.MaxPage*common.ItemsPerPage)
}

func TestReadData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	private, err := env.files.Upload(ctx, "u1", UploadRequest{Name: "notes.txt", Type: "file", Data: b64("secret")})
	require.NoError(t, err)
	folder, err := env.files.Upload(ctx, "u1", UploadRequest{Name: "docs", Type: "folder", IsPublic: true})
	require.NoError(t, err)

	data, err := env.files.ReadData(ctx, "u1", private.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "secret", string(data.Data))
	assert.Equal(t, "text/plain; charset=utf-8", data.ContentType)

	_, err = env.files.ReadData(ctx, "", private.ID, "")
	assert.True(t, fmerrors.IsNotFound(err))
	_, err = env.files.ReadData(ctx, "u2", private.ID, "")
	assert.True(t, fmerrors.IsNotFound(err))

	_, err = env.files.SetPublished(ctx, "u1", private.ID, true)
	require.NoError(t, err)
	data, err = env.files.ReadData(ctx, "", private.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "secret", string(data.Data))

	_, err = env.files.ReadData(ctx, "u1", folder.ID, "")
	assert.Equal(t, fmerrors.MsgFolderHasNoContent, fmerrors.Message(err))

	_, err = env.files.ReadData(ctx, "u1", "65f000000000000000000000", "")
	assert.True(t, fmerrors.IsNotFound(err))
}

func TestReadData_Thumbnails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	img, err := env.files.Upload(ctx, "u1", UploadRequest{
		Name: "noext",
		Type: "image",
		Data: base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	require.NoError(t, err)

	data, err := env.files.ReadData(ctx, "u1", img.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", data.ContentType)

	_, err = env.files.ReadData(ctx, "u1", img.ID, "250")
	assert.True(t, fmerrors.IsNotFound(err), "thumbnail not generated yet")

	require.NoError(t, env.storage.Write(ctx, storage.ThumbnailPath(img.LocalPath, 250), buf.Bytes()))
	data, err = env.files.ReadData(ctx, "u1", img.ID, "250")
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), data.Data)

	_, err = env.files.ReadData(ctx, "u1", img.ID, "42")
	assert.Equal(t, fmerrors.MsgInvalidSize, fmerrors.Message(err))
	_, err = env.files.ReadData(ctx, "u1", img.ID, "big")
	assert.Equal(t, fmerrors.MsgInvalidSize, fmerrors.Message(err))
}
