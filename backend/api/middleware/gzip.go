package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"files-manager/backend/common"
	fmerrors "files-manager/backend/common/errors"

	"github.com/gin-gonic/gin"
)

// GzipDecodeMiddleware decompresses gzipped request bodies, which keeps large
// base64 uploads cheap on the wire.
func GzipDecodeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Content-Encoding") == "gzip" {
			gzipReader, err := gzip.NewReader(c.Request.Body)
			if err != nil {
				common.RespErrorStr(c, http.StatusBadRequest, fmerrors.MsgInvalidBody)
				return
			}
			defer gzipReader.Close()

			c.Request.Body = io.NopCloser(gzipReader)
			c.Request.Header.Del("Content-Encoding")
			c.Request.ContentLength = -1
		}
		c.Next()
	}
}

type gzipWriter struct {
	gin.ResponseWriter
	writer *gzip.Writer
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	return g.writer.Write(data)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.writer.Write([]byte(s))
}

// GzipEncodeMiddleware compresses response bodies for clients accepting gzip.
// HEAD requests are left alone since they carry no body.
func GzipEncodeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead ||
			!strings.Contains(c.Request.Header.Get("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gz, err := gzip.NewWriterLevel(c.Writer, gzip.BestSpeed)
		if err != nil {
			c.Next()
			return
		}

		c.Writer = &gzipWriter{ResponseWriter: c.Writer, writer: gz}
		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")
		c.Next()

		if c.Writer.Status() == http.StatusNoContent || c.Writer.Status() == http.StatusNotModified {
			gz.Reset(io.Discard)
			c.Writer.Header().Del("Content-Encoding")
		}
		gz.Close()
	}
}
