package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SayemTaher/university-management-server/pkg/response"
)

// BodyLimit 请求体大小限制
// Content-Length 已知且超限时直接返回 413；未知长度时由 MaxBytesReader 在读取时截断
func BodyLimit(maxBytes int64, renderer *response.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			renderer.Status(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
