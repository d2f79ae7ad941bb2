package model

import (
	"context"

	"files-manager/backend/common"

	"go.uber.org/zap"
)

// OpenStore connects to the document store selected by cfg.DBDriver.
func OpenStore(ctx context.Context, cfg *common.Config) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.DBDriver {
	case common.DBDriverMySQL:
		common.SysLog("Using MySQL database")
		store, err = NewMySQLStore(cfg.SQLDSN)
	case common.DBDriverSQLite:
		common.SysLog("Using SQLite database", zap.String("path", cfg.SQLitePath))
		store, err = NewSQLiteStore(cfg.SQLitePath)
	default:
		common.SysLog("Using MongoDB database", zap.String("database", cfg.DBDatabase))
		store, err = NewMongoStore(ctx, cfg.MongoConnURI(), cfg.DBDatabase)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
