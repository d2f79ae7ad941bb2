package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fmerrors "files-manager/backend/common/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err  error
		code int
		body string
	}{
		{fmerrors.Invalid(fmerrors.MsgMissingEmail), http.StatusBadRequest, `{"error":"Missing email"}`},
		{fmerrors.Unauthorized(), http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{fmerrors.NotFound(), http.StatusNotFound, `{"error":"Not found"}`},
		{errors.New("disk on fire"), http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		RespError(c, tt.err)
		assert.Equal(t, tt.code, rec.Code)
		assert.JSONEq(t, tt.body, rec.Body.String())
		assert.True(t, c.IsAborted())
	}
}
