package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	shardedcache "github.com/simp-lee/cache"
	"github.com/simp-lee/jwt"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/config"
	"github.com/tracnorth/site/internal/middleware"
	"github.com/tracnorth/site/internal/module/auth"
	"github.com/tracnorth/site/internal/pkg"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules    []Module
	AuthModule *auth.AuthModule
	JWTService jwt.Service
	DB         *gorm.DB
	UploadDir  string
	Cache      *config.CacheConfig
}

// RegisterRoutes registers all application routes on the given gin.Engine.
//
// Layout:
//
//	/health                – liveness and database status
//	/storage/*             – uploaded files (images, brochures)
//	/api/v1/auth/*         – login and registration, no token required
//	/api/v1/admin/*        – back-office CRUD, token required
//	/api/v1/public/*       – website content, optionally response-cached
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.AuthModule == nil {
		return errors.New("auth module is required")
	}
	if deps.JWTService == nil {
		return errors.New("jwt service is required")
	}

	r.GET("/health", healthHandler(deps.DB))

	if deps.UploadDir != "" {
		r.Static("/storage", deps.UploadDir)
	}

	api := r.Group("/api/v1")

	deps.AuthModule.RegisterRoutes(api.Group("/auth"))

	admin := api.Group("/admin")
	admin.Use(middleware.Auth(deps.JWTService))

	public := api.Group("/public")
	if deps.Cache != nil && deps.Cache.Enabled {
		ttl, err := time.ParseDuration(deps.Cache.TTL)
		if err != nil {
			return fmt.Errorf("invalid server.cache.ttl: %w", err)
		}
		store := shardedcache.NewCache(shardedcache.Options{
			MaxSize:           deps.Cache.MaxSize,
			DefaultExpiration: ttl,
		})
		public.Use(middleware.CachePublic(store, ttl))
	}

	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(admin, public)
	}

	r.NoRoute(noRouteHandler())

	return nil
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"components": gin.H{
					"database": "error",
				},
			})
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				dbStatus = "error"
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

// noRouteHandler returns a JSON 404 for unknown paths. The API is
// JSON-only, so there is no HTML error page to fall back to.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		message := "not found"
		if !strings.HasPrefix(path, "/api/") {
			message = "resource not found"
		}
		c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: message})
	}
}
