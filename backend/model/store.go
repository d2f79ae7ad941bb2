package model

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document matches. Malformed ids are
	// reported the same way.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint (users.email) is hit.
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore is the "users" collection.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// FileStore is the "files" collection. Lookups taking a userID only match
// records owned by that user.
type FileStore interface {
	CreateFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, userID, fileID string) (*File, error)
	GetFileByID(ctx context.Context, fileID string) (*File, error)
	ListFiles(ctx context.Context, userID, parentID string, page, pageSize int) ([]*File, error)
	SetFilePublic(ctx context.Context, userID, fileID string, public bool) (*File, error)
	CountFiles(ctx context.Context) (int64, error)
}

// Store is the document store used by the server and the worker.
type Store interface {
	UserStore
	FileStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
