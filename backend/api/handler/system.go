package handler

import (
	"net/http"

	"files-manager/backend/common"
	fmerrors "files-manager/backend/common/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type statusResponse struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

// GetStatus reports whether Redis and the document store answer a ping.
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	status := statusResponse{Redis: true, DB: true}
	if err := h.KV.Ping(ctx); err != nil {
		common.SysError("redis ping failed", zap.Error(err))
		status.Redis = false
	}
	if err := h.Store.Ping(ctx); err != nil {
		common.SysError("database ping failed", zap.Error(err))
		status.DB = false
	}
	common.RespSuccess(c, http.StatusOK, status)
}

type statsResponse struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	users, err := h.Store.CountUsers(ctx)
	if err != nil {
		common.RespError(c, fmerrors.Internal(err))
		return
	}
	files, err := h.Store.CountFiles(ctx)
	if err != nil {
		common.RespError(c, fmerrors.Internal(err))
		return
	}
	common.RespSuccess(c, http.StatusOK, statsResponse{Users: users, Files: files})
}

// NoRoute answers unknown routes the way express does.
func NoRoute(c *gin.Context) {
	common.RespErrorStr(c, http.StatusNotFound, "Cannot "+c.Request.Method+" "+c.Request.URL.Path)
}
