package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"civicsync/internal/core/auth"
	mdw "civicsync/internal/transport/http/middleware"
)

// NewAPIEngine 组引擎：中间件链 → 静态 /uploads → /metrics →
// /api 分组（public + 鉴权子分组），模块经注册表挂载
func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, uploadDir string) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	// 上传图片走公共静态路径
	if uploadDir != "" {
		r.Static("/uploads", uploadDir)
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authed := api.Group("")
	authed.Use(mdw.AuthJWT(jwter))

	MountAll(api, authed)

	return r
}
