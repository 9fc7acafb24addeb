package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"civicsync/internal/analytics"
	"civicsync/internal/core/cache"
	"civicsync/internal/domain"
	"civicsync/internal/transport/http/ez"
)

// Analytics 默认每次全量重算；配置了 redis + TTL 时经
// cache.GetOrLoadJSON 合并回源
type Analytics struct {
	store domain.Store
	agg   *analytics.Aggregator
	cache *cache.Cache
	ttl   time.Duration
}

func NewAnalytics(s domain.Store, agg *analytics.Aggregator) *Analytics {
	return &Analytics{store: s, agg: agg}
}

func (h *Analytics) WithCache(c *cache.Cache, ttl time.Duration) *Analytics {
	h.cache = c
	h.ttl = ttl
	return h
}

func (h *Analytics) Priority() int { return 30 }

func (h *Analytics) Mount(_, authed *gin.RouterGroup) {
	e := ez.New(authed)

	ez.Register[struct{}, analytics.Summary](e, h.store, ez.Action[struct{}, analytics.Summary]{
		Method: http.MethodGet,
		Path:   "/analytics",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, s domain.Store, _ *struct{}) (analytics.Summary, error) {
			if h.cache != nil && h.ttl > 0 {
				out, err := cache.GetOrLoadJSON[analytics.Summary](h.cache, c, "analytics:summary", h.ttl,
					func(_ context.Context) (*analytics.Summary, error) {
						return h.agg.Summarize(time.Now())
					})
				if err != nil || out == nil {
					return analytics.Summary{}, ez.Internal("Server error while fetching analytics", err)
				}
				return *out, nil
			}
			out, err := h.agg.Summarize(time.Now())
			if err != nil {
				return analytics.Summary{}, ez.Internal("Server error while fetching analytics", err)
			}
			return *out, nil
		},
	})
}
