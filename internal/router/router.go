package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/handler"
	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/utils"
)

// RegisterHealth registers the unauthenticated health endpoints
// under /api. Responses are static (or near-static, in the case of
// the DB ping), so they sit behind the Redis response cache.
func RegisterHealth(e *echo.Echo, db *sql.DB, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	e.GET("/", handler.Index, cache)
	e.GET("/api/health", handler.Health, cache)
	e.GET("/api/status", handler.Status(db), cache)
}

// RegisterAuth registers all authentication routes under /api/auth
// and applies the middleware chain in the order the pipeline
// demands: token check (where a route is protected) runs before the
// rate limiter so authenticated buckets can key on the user, and the
// handler performs content-type and schema validation itself before
// touching the service.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, issuer *utils.TokenIssuer, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	requireAccess := middleware.RequireToken(issuer, utils.KindAccess)
	requireRefresh := middleware.RequireToken(issuer, utils.KindRefresh)

	g := e.Group("/api/auth")

	// Unauthenticated operations, each with its own bucket.
	g.POST("/register", a.Register, middleware.NewTokenBucket(rlCfg, config.PerMinute(rlCfg.RegisterPerMin), rdb))
	g.POST("/login", a.Login, middleware.NewTokenBucket(rlCfg, config.PerMinute(rlCfg.LoginPerMin), rdb))
	g.POST("/refresh", a.Refresh, middleware.NewTokenBucket(rlCfg, config.PerMinute(rlCfg.RefreshPerMin), rdb))

	// Operations requiring a valid access token.
	g.GET("/me", a.Me, requireAccess)
	g.POST("/change-password", a.ChangePassword, requireAccess,
		middleware.NewTokenBucket(rlCfg, config.PerMinute(rlCfg.PasswordPerMin), rdb))
	g.POST("/deactivate", a.Deactivate, requireAccess)
	g.POST("/logout", a.Logout, requireAccess)

	// Logout for clients that only hold a refresh token.
	g.POST("/logout/refresh", a.Logout, requireRefresh)
}
