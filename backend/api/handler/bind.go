package handler

import (
	"errors"
	"io"

	fmerrors "files-manager/backend/common/errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// bindJSON decodes the body into req and validates its binding tags. The
// first failing field is reported with the message registered for it. An
// empty body is validated as an empty object.
func bindJSON(c *gin.Context, req any, messages map[string]string) error {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := messages[verrs[0].StructField()]; ok {
			return fmerrors.Invalid(msg)
		}
	}
	return fmerrors.Invalid(fmerrors.MsgInvalidBody)
}
