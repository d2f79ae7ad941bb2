package handler

import (
	"net/http"

	"files-manager/backend/api/middleware"
	"files-manager/backend/common"
	fmerrors "files-manager/backend/common/errors"

	"github.com/gin-gonic/gin"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// GetConnect trades Basic credentials for a session token.
func (h *Handler) GetConnect(c *gin.Context) {
	token, err := h.Auth.IssueToken(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		common.RespError(c, fmerrors.Internal(err))
		return
	}
	if h.Metrics != nil {
		h.Metrics.TokensIssued.Inc()
	}
	common.RespSuccess(c, http.StatusOK, tokenResponse{Token: token})
}

// GetDisconnect revokes the session token of the request.
func (h *Handler) GetDisconnect(c *gin.Context) {
	if err := h.Auth.RevokeToken(c.Request.Context(), c.GetHeader(common.TokenHeader)); err != nil {
		common.RespError(c, fmerrors.Internal(err))
		return
	}
	if h.Metrics != nil {
		h.Metrics.TokensRevoked.Inc()
	}
	c.Status(http.StatusNoContent)
}
