// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/prefborba/requisicoes-api/internal/config"
	"github.com/prefborba/requisicoes-api/internal/handler"
	"github.com/prefborba/requisicoes-api/internal/middleware"
	"github.com/prefborba/requisicoes-api/internal/model"
)

// Handlers bundles every handler the API mounts so RegisterRoutes has a
// single injection point.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Reqs     *handler.RequisitionHandler
	Workflow *handler.WorkflowHandler
}

// RegisterRoutes mounts the full API under /api.
//
// The login endpoint sits behind the Redis token-bucket limiter so a
// credential-stuffing burst cannot hammer bcrypt.  The read listings
// sit behind the Redis response cache.  The user directory requires a
// valid access token with the admin profile; the requisition endpoints
// identify actors through request bodies and stay open, matching the
// back-office clients already in the field.  Both Redis middlewares are
// pass-through when rdb is nil.
func RegisterRoutes(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	api := e.Group("/api")
	api.GET("/health", handler.Health)
	api.POST("/login", h.Auth.Login, limiter)

	u := api.Group("/usuarios")
	u.Use(middleware.JWTAuth(cfg.JWTSecret))
	u.Use(middleware.RequirePerfil(model.PerfilAdmin))
	u.GET("", h.Users.List)
	u.POST("", h.Users.Create)
	u.PUT("/:id", h.Users.Update)
	u.DELETE("/:id", h.Users.Delete)

	r := api.Group("/requisicoes")
	r.POST("", h.Reqs.Create)
	r.GET("", h.Reqs.List, cache)
	r.GET("/pendentes", h.Reqs.ListPendentes, cache)
	r.GET("/emissor/:emissorId", h.Reqs.ListByEmissor, cache)
	r.GET("/:id", h.Reqs.GetByID)
	r.GET("/:id/log", h.Reqs.Historico)
	r.PUT("/:id/autorizar", h.Workflow.Autorizar)
	r.PUT("/:id/cancelar", h.Workflow.Cancelar)
	r.POST("/:id/assinar", h.Workflow.Assinar)
	r.POST("/:id/validar", h.Workflow.Validar)
}
