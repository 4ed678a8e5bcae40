package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vrlink/vrlink-api/internal/container"
	"github.com/vrlink/vrlink-api/pkg/response"
)

// HealthModule exposes a liveness/readiness probe that pings the backing
// stores.
type HealthModule struct{}

func NewHealthModule() *HealthModule { return &HealthModule{} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{}
		healthy := true

		if pool := container.GetPGPool(); pool != nil {
			if err := pool.Ping(ctx); err != nil {
				checks["postgres"] = "down"
				healthy = false
			} else {
				checks["postgres"] = "up"
			}
		}
		if rdb := container.GetRedis(); rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = "down"
				healthy = false
			} else {
				checks["redis"] = "up"
			}
		}
		checks["time"] = time.Now().UTC()

		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "unhealthy", checks)
			return
		}
		response.Success(c, http.StatusOK, checks, "healthy")
	})
}
