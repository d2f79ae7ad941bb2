package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLStore implements Store with gorm on SQLite or MySQL. Ids are generated
// as ObjectID hex strings so both backends hand out the same id format.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (creating if needed) the SQLite database at path.
func NewSQLiteStore(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory %s: %w", dir, err)
		}
	}
	return openSQLStore(sqlite.Open(path))
}

// NewMySQLStore opens the MySQL database described by dsn.
func NewMySQLStore(dsn string) (*SQLStore, error) {
	return openSQLStore(mysql.Open(dsn))
}

func openSQLStore(dialector gorm.Dialector) (*SQLStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := db.AutoMigrate(&User{}, &File{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate database schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) CreateUser(ctx context.Context, user *User) error {
	row := *user
	row.ID = primitive.NewObjectID().Hex()
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = row.ID
	return nil
}

func (s *SQLStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.firstUser(ctx, "id = ?", id)
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.firstUser(ctx, "email = ?", email)
}

func (s *SQLStore) firstUser(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *SQLStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&User{}).Count(&n).Error
	return n, err
}

func (s *SQLStore) CreateFile(ctx context.Context, file *File) error {
	row := *file
	row.ID = primitive.NewObjectID().Hex()
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	file.ID = row.ID
	return nil
}

func (s *SQLStore) GetFile(ctx context.Context, userID, fileID string) (*File, error) {
	return s.firstFile(ctx, s.db.Where("id = ? AND user_id = ?", fileID, userID))
}

func (s *SQLStore) GetFileByID(ctx context.Context, fileID string) (*File, error) {
	return s.firstFile(ctx, s.db.Where("id = ?", fileID))
}

func (s *SQLStore) firstFile(ctx context.Context, query *gorm.DB) (*File, error) {
	var file File
	if err := query.WithContext(ctx).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return &file, nil
}

func (s *SQLStore) ListFiles(ctx context.Context, userID, parentID string, page, pageSize int) ([]*File, error) {
	files := make([]*File, 0, pageSize)
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND parent_id = ?", userID, parentID).
		Order("id asc").
		Limit(pageSize).
		Offset(page * pageSize).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (s *SQLStore) SetFilePublic(ctx context.Context, userID, fileID string, public bool) (*File, error) {
	var file *File
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&File{}).
			Where("id = ? AND user_id = ?", fileID, userID).
			Update("is_public", public)
		if res.Error != nil {
			return fmt.Errorf("update file: %w", res.Error)
		}
		var found File
		if err := tx.Where("id = ? AND user_id = ?", fileID, userID).First(&found).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("find file: %w", err)
		}
		file = &found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (s *SQLStore) CountFiles(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&File{}).Count(&n).Error
	return n, err
}
