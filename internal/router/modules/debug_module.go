package modules

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/go-recipe-api/internal/container"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/pkg/response"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar and Prometheus exposition, rate-limited per IP
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	rg.GET("/debug/metrics", rl, gin.WrapH(promhttp.Handler()))
	rg.GET("/debug/health", rl, health)
}

// health pings every configured backend; unconfigured ones are left out.
func health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	record := func(name string, err error) {
		if err != nil {
			checks[name] = err.Error()
			healthy = false
			return
		}
		checks[name] = "ok"
	}

	if pool := container.GetPGPool(); pool != nil {
		record("postgres", pool.Ping(ctx))
	}
	if rdb := container.GetRedis(); rdb != nil {
		record("redis", rdb.Ping(ctx).Err())
	}
	if es := container.GetES(); es != nil {
		res, err := es.Ping(es.Ping.WithContext(ctx))
		if err == nil {
			_ = res.Body.Close()
			if res.IsError() {
				err = fmt.Errorf("status %s", res.Status())
			}
		}
		record("elasticsearch", err)
	}

	if !healthy {
		response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", checks)
		return
	}
	response.Success(c, http.StatusOK, checks, "healthy", nil)
}
