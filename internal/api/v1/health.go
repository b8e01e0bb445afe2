package v1

import (
	"net/http"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/redis"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	redis  *redis.Client
	logger *logger.Logger
}

// NewHealthHandler accepts a nil redis client when the cache is not redis backed
func NewHealthHandler(
	redis *redis.Client,
	logger *logger.Logger,
) *HealthHandler {
	return &HealthHandler{
		redis:  redis,
		logger: logger,
	}
}

// @Summary Health check
// @Description Health check, including the redis cache when configured
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			h.logger.Warnw("health check failed", "dependency", "redis", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": "unreachable"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
