// Package handler holds the gin handlers of the files-manager API.
package handler

import (
	"files-manager/backend/library/kv"
	"files-manager/backend/library/metrics"
	"files-manager/backend/model"
	"files-manager/backend/service"
)

// Handler serves every route. It is built once at startup with the
// application's clients.
type Handler struct {
	Auth    *service.AuthService
	Users   *service.UserService
	Files   *service.FileService
	Store   model.Store
	KV      kv.Store
	Metrics *metrics.Registry
}
