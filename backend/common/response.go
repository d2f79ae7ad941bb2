package common

import (
	"net/http"

	fmerrors "files-manager/backend/common/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIError is the body of every error response.
type APIError struct {
	Error string `json:"error"`
}

// RespErrorStr 响应错误，只包含错误消息
func RespErrorStr(c *gin.Context, statusCode int, msg string) {
	c.AbortWithStatusJSON(statusCode, APIError{Error: msg})
}

// RespError maps err to a status code through its kind. Internal failures are
// logged with their cause and answered with a generic message.
func RespError(c *gin.Context, err error) {
	switch fmerrors.KindOf(err) {
	case fmerrors.KindInvalid:
		RespErrorStr(c, http.StatusBadRequest, fmerrors.Message(err))
	case fmerrors.KindUnauthorized:
		RespErrorStr(c, http.StatusUnauthorized, fmerrors.Message(err))
	case fmerrors.KindNotFound:
		RespErrorStr(c, http.StatusNotFound, fmerrors.Message(err))
	default:
		SysError("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(err),
		)
		RespErrorStr(c, http.StatusInternalServerError, fmerrors.MsgInternalServer)
	}
}

// RespSuccess 响应成功，返回数据
func RespSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}
