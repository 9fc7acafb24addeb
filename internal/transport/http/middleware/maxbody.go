package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "civicsync/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；图片的 5MB 上限由 upload 层单独判
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			resp.BadRequest(c, "request body too large")
		}
	}
}
