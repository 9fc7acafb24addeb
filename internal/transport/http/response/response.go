package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 错误统一只有一个人类可读的 error 字符串
type ErrorBody struct {
	Error string `json:"error"`
}

// Err 按真实 HTTP 状态码返回错误并中断后续 handler
func Err(c *gin.Context, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg})
}

func BadRequest(c *gin.Context, msg string)   { Err(c, http.StatusBadRequest, msg) }
func Unauthorized(c *gin.Context, msg string) { Err(c, http.StatusUnauthorized, msg) }
func Forbidden(c *gin.Context, msg string)    { Err(c, http.StatusForbidden, msg) }
func NotFound(c *gin.Context, msg string)     { Err(c, http.StatusNotFound, msg) }
func Internal(c *gin.Context, msg string)     { Err(c, http.StatusInternalServerError, msg) }
