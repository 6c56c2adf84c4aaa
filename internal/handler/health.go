package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Health reports process liveness, the Holded circuit state and Redis
// connectivity. Redis is optional, so "disabled" is still healthy.
func Health(cb interface{ CircuitState() infra.CBState }, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		status := http.StatusOK
		if redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":             status == http.StatusOK,
			"holded_circuit": cb.CircuitState().String(),
			"redis":          redisStatus,
		})
	}
}
