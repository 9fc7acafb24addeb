package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// Module 路由模块：public 不走鉴权（health/register/login），
// authed 已套 AuthJWT
type Module interface {
	Mount(public, authed *gin.RouterGroup)
}

// 可选：实现该接口可控制挂载顺序（数值越小越先挂），不实现默认 100
type prioritizer interface{ Priority() int }

var (
	mu   sync.RWMutex
	mods []Module
)

// Register 统一注册入口，main 在建引擎前调用
func Register(mod Module) {
	mu.Lock()
	defer mu.Unlock()
	mods = append(mods, mod)
}

// Reset 清空注册表（测试用）
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	mods = nil
}

// MountAll 按优先级把所有模块挂到 /api 分组
func MountAll(public, authed *gin.RouterGroup) {
	mu.RLock()
	ms := append([]Module(nil), mods...)
	mu.RUnlock()

	sort.SliceStable(ms, func(i, j int) bool {
		return priorityOf(ms[i]) < priorityOf(ms[j])
	})
	for _, m := range ms {
		m.Mount(public, authed)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
