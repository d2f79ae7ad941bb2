package middleware

import (
	"files-manager/backend/common"
	fmerrors "files-manager/backend/common/errors"
	"files-manager/backend/model"
	"files-manager/backend/service"

	"github.com/gin-gonic/gin"
)

// CurrentUser returns the user stored by one of the auth middlewares, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(common.UserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

// BasicAuth requires valid Authorization: Basic credentials.
func BasicAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.UserFromBasic(c.Request.Context(), c.GetHeader("Authorization"))
		authHelper(c, user, err, true)
	}
}

// TokenAuth requires a live X-Token session.
func TokenAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.UserFromToken(c.Request.Context(), c.GetHeader(common.TokenHeader))
		authHelper(c, user, err, true)
	}
}

// OptionalTokenAuth resolves X-Token when present and lets anonymous requests
// through.
func OptionalTokenAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(common.TokenHeader)
		if token == "" {
			c.Next()
			return
		}
		user, err := auth.UserFromToken(c.Request.Context(), token)
		authHelper(c, user, err, false)
	}
}

func authHelper(c *gin.Context, user *model.User, err error, required bool) {
	if err != nil {
		common.RespError(c, fmerrors.Internal(err))
		return
	}
	if user == nil {
		if required {
			common.RespError(c, fmerrors.Unauthorized())
			return
		}
		c.Next()
		return
	}
	c.Set(common.UserKey, user)
	c.Next()
}
