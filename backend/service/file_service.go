package service

import (
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"path/filepath"
	"slices"
	"strconv"

	"files-manager/backend/common"
	fmerrors "files-manager/backend/common/errors"
	"files-manager/backend/library/queue"
	"files-manager/backend/library/storage"
	"files-manager/backend/model"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// UploadRequest is the body of POST /files. Data is base64 and required for
// everything but folders.
type UploadRequest struct {
	Name     string
	Type     string
	ParentID string
	IsPublic bool
	Data     string
}

// FileData is the content served by GET /files/:id/data.
type FileData struct {
	File        *model.File
	ContentType string
	Data        []byte
}

type FileService struct {
	files   model.FileStore
	storage storage.Storage
	jobs    queue.Dispatcher
}

func NewFileService(files model.FileStore, store storage.Storage, jobs queue.Dispatcher) *FileService {
	return &FileService{files: files, storage: store, jobs: jobs}
}

func (s *FileService) Upload(ctx context.Context, userID string, req UploadRequest) (*model.File, error) {
	if req.Name == "" {
		return nil, fmerrors.Invalid(fmerrors.MsgMissingName)
	}
	fileType := model.FileType(req.Type)
	if !fileType.Valid() {
		return nil, fmerrors.Invalid(fmerrors.MsgMissingType)
	}
	var data []byte
	if fileType != model.FileTypeFolder {
		if req.Data == "" {
			return nil, fmerrors.Invalid(fmerrors.MsgMissingData)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, fmerrors.Invalid(fmerrors.MsgMissingData)
		}
		data = decoded
	}

	parentID := req.ParentID
	if parentID == "" {
		parentID = model.RootParentID
	}
	if parentID != model.RootParentID {
		parent, err := s.files.GetFile(ctx, userID, parentID)
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmerrors.Invalid(fmerrors.MsgParentNotFound)
		}
		if err != nil {
			return nil, fmerrors.Internal(err)
		}
		if !parent.IsFolder() {
			return nil, fmerrors.Invalid(fmerrors.MsgParentNotFolder)
		}
	}

	file := &model.File{
		UserID:   userID,
		Name:     req.Name,
		Type:     fileType,
		IsPublic: req.IsPublic,
		ParentID: parentID,
	}
	if !file.IsFolder() {
		file.LocalPath = s.storage.NewPath()
		if err := s.storage.Write(ctx, file.LocalPath, data); err != nil {
			return nil, fmerrors.Internal(err)
		}
	}
	if err := s.files.CreateFile(ctx, file); err != nil {
		if file.LocalPath != "" {
			if delErr := s.storage.Delete(ctx, file.LocalPath); delErr != nil {
				common.SysError("failed to remove orphaned file data",
					zap.String("path", file.LocalPath),
					zap.Error(delErr),
				)
			}
		}
		return nil, fmerrors.Internal(err)
	}

	if file.Type == model.FileTypeImage {
		if err := queue.EnqueueThumbnail(ctx, s.jobs, file.ID, userID); err != nil {
			common.SysError("failed to enqueue thumbnail generation",
				zap.String("file_id", file.ID),
				zap.Error(err),
			)
		}
	}
	return file, nil
}

// Get returns one of the caller's files.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*model.File, error) {
	file, err := s.files.GetFile(ctx, userID, fileID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmerrors.NotFound()
	}
	if err != nil {
		return nil, fmerrors.Internal(err)
	}
	return file, nil
}

// List pages through the caller's files under parentID, ItemsPerPage at a
// time. Negative pages are treated as the first one and pages past
// common.MaxPage as the last one.
func (s *FileService) List(ctx context.Context, userID, parentID string, page int) ([]*model.File, error) {
	if parentID == "" {
		parentID = model.RootParentID
	}
	page = min(max(page, 0), common.MaxPage)
	files, err := s.files.ListFiles(ctx, userID, parentID, page, common.ItemsPerPage)
	if err != nil {
		return nil, fmerrors.Internal(err)
	}
	if files == nil {
		files = []*model.File{}
	}
	return files, nil
}

// SetPublished flips the visibility of one of the caller's files.
func (s *FileService) SetPublished(ctx context.Context, userID, fileID string, public bool) (*model.File, error) {
	file, err := s.files.SetFilePublic(ctx, userID, fileID, public)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmerrors.NotFound()
	}
	if err != nil {
		return nil, fmerrors.Internal(err)
	}
	return file, nil
}

// ReadData returns the content of a file, or of one of its thumbnails when
// size is set. Private files are only visible to their owner; viewerID is
// empty for anonymous requests.
func (s *FileService) ReadData(ctx context.Context, viewerID, fileID, size string) (*FileData, error) {
	file, err := s.files.GetFileByID(ctx, fileID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmerrors.NotFound()
	}
	if err != nil {
		return nil, fmerrors.Internal(err)
	}
	if !file.IsPublic && (viewerID == "" || viewerID != file.UserID) {
		return nil, fmerrors.NotFound()
	}
	if file.IsFolder() {
		return nil, fmerrors.Invalid(fmerrors.MsgFolderHasNoContent)
	}

	path := file.LocalPath
	if size != "" {
		width, err := strconv.Atoi(size)
		if err != nil || !slices.Contains(common.ThumbnailSizes, width) {
			return nil, fmerrors.Invalid(fmerrors.MsgInvalidSize)
		}
		path = storage.ThumbnailPath(path, width)
	}

	data, err := s.storage.Read(ctx, path)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, fmerrors.NotFound()
	}
	if err != nil {
		return nil, fmerrors.Internal(err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(file.Name))
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	return &FileData{File: file, ContentType: contentType, Data: data}, nil
}
