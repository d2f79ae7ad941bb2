package handler

import (
	"net/http"

	"files-manager/backend/api/middleware"
	"files-manager/backend/common"
	fmerrors "files-manager/backend/common/errors"

	"github.com/gin-gonic/gin"
)

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

var signupMessages = map[string]string{
	"Email":    fmerrors.MsgMissingEmail,
	"Password": fmerrors.MsgMissingPassword,
}

type userResponse struct {
	Email string `json:"email"`
	ID    string `json:"id"`
}

// PostUser registers a new account.
func (h *Handler) PostUser(c *gin.Context) {
	var req SignupRequest
	if err := bindJSON(c, &req, signupMessages); err != nil {
		common.RespError(c, err)
		return
	}
	user, err := h.Users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespError(c, err)
		return
	}
	common.RespSuccess(c, http.StatusCreated, userResponse{Email: user.Email, ID: user.ID})
}

func (h *Handler) GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	common.RespSuccess(c, http.StatusOK, userResponse{Email: user.Email, ID: user.ID})
}
