package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"files-manager/backend/api/middleware"
	"files-manager/backend/common"
	fmerrors "files-manager/backend/common/errors"
	"files-manager/backend/service"

	"github.com/gin-gonic/gin"
)

// UploadRequest is the body of POST /files. parentId may be sent as the
// number 0 or as a string id.
type UploadRequest struct {
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=folder file image"`
	ParentID any    `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

var uploadMessages = map[string]string{
	"Name": fmerrors.MsgMissingName,
	"Type": fmerrors.MsgMissingType,
}

func parentIDString(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return p
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	default:
		return fmt.Sprint(p)
	}
}

func (h *Handler) PostFile(c *gin.Context) {
	var req UploadRequest
	if err := bindJSON(c, &req, uploadMessages); err != nil {
		common.RespError(c, err)
		return
	}
	file, err := h.Files.Upload(c.Request.Context(), middleware.CurrentUser(c).ID, service.UploadRequest{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: parentIDString(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		common.RespError(c, err)
		return
	}
	common.RespSuccess(c, http.StatusCreated, file)
}

func (h *Handler) GetFile(c *gin.Context) {
	file, err := h.Files.Get(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
	if err != nil {
		common.RespError(c, err)
		return
	}
	common.RespSuccess(c, http.StatusOK, file)
}

// ListFiles pages through the caller's files. ?page defaults to 0 and
// ?parentId to the root.
func (h *Handler) ListFiles(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	files, err := h.Files.List(c.Request.Context(), middleware.CurrentUser(c).ID, c.Query("parentId"), page)
	if err != nil {
		common.RespError(c, err)
		return
	}
	common.RespSuccess(c, http.StatusOK, files)
}

func (h *Handler) PublishFile(c *gin.Context) {
	h.setPublished(c, true)
}

func (h *Handler) UnpublishFile(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *Handler) setPublished(c *gin.Context, public bool) {
	file, err := h.Files.SetPublished(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), public)
	if err != nil {
		common.RespError(c, err)
		return
	}
	common.RespSuccess(c, http.StatusOK, file)
}

// GetFileData serves the raw content of a file or, with ?size, one of its
// thumbnails. Anonymous callers only see public files.
func (h *Handler) GetFileData(c *gin.Context) {
	var viewerID string
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}
	data, err := h.Files.ReadData(c.Request.Context(), viewerID, c.Param("id"), c.Query("size"))
	if err != nil {
		common.RespError(c, err)
		return
	}
	c.Data(http.StatusOK, data.ContentType, data.Data)
}
