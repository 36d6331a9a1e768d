package handler

import (
	"context"
	"net/http"
	"time"

	"solispdv/internal/service"
	"solispdv/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// The daemon is healthy when its local database (and Redis, when configured)
// answers. The agent is reported but does not fail the check: the terminal
// keeps serving its cart while the agent is down.
func Health(db *gorm.DB, rdb *redis.Client, catalogo service.CatalogoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		var falhas int64
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
			for _, q := range []string{worker.QueueRelatorio, worker.QueueEmail} {
				n, _ := worker.DLQLength(ctx, rdb, q)
				falhas += n
			}
		}

		agenteStatus := "unreachable"
		if hc, err := catalogo.Health(ctx); err == nil && hc != nil {
			agenteStatus = hc.Status
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":     status == http.StatusOK,
			"db":     dbStatus,
			"redis":  redisStatus,
			"agente": agenteStatus,
			"dlq":    falhas,
		})
	}
}
