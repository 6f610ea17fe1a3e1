package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/qbank-extract/database"
	"github.com/sahilchouksey/qbank-extract/utils/cache"
	"github.com/sahilchouksey/qbank-extract/utils/response"
)

// HandleCheckHealth reports service liveness plus the reachability of
// the optional database and cache collaborators
func HandleCheckHealth(c *fiber.Ctx, store database.Storage, redisCache *cache.RedisCache) error {
	dbStatus := "ok"
	if store == nil {
		dbStatus = "disabled"
	} else if err := store.HealthCheck(); err != nil {
		dbStatus = "unreachable"
	}

	cacheStatus := "ok"
	if redisCache == nil {
		cacheStatus = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := redisCache.Ping(ctx); err != nil {
			cacheStatus = "unreachable"
		}
	}

	return response.Success(c, fiber.Map{
		"status":   "ok",
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}
