package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"civicsync/internal/core/auth"
	resp "civicsync/internal/transport/http/response"
)

const (
	KeyUserID    = "userId"
	KeyUserEmail = "userEmail"
)

// AuthJWT 凭证缺失和凭证无效要区分：401 / 403
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Unauthorized(c, "Access denied. No token provided.")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Forbidden(c, "Invalid or expired token")
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyUserEmail, claims.Email)
		c.Next()
	}
}
