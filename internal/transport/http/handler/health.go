package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health 无鉴权的存活检查 + 路由目录
type Health struct{}

func NewHealth() *Health { return &Health{} }

func (h *Health) Priority() int { return 0 }

func (h *Health) Mount(public, _ *gin.RouterGroup) {
	public.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"message":   "CivicSync API is running",
			"timestamp": time.Now().Format(time.RFC3339),
			"endpoints": gin.H{
				"auth":      []string{"/api/auth/register", "/api/auth/login", "/api/auth/me"},
				"issues":    []string{"/api/issues", "/api/issues/my", "/api/issues/:id"},
				"voting":    []string{"/api/issues/:id/vote"},
				"analytics": []string{"/api/analytics"},
			},
		})
	})
}
