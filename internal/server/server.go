// internal/server/server.go
// Package server assembles the HTTP surface: middleware, route groups,
// and the feature handlers mounted on them.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"membership-backend/internal/api/admin"
	"membership-backend/internal/api/auth"
	"membership-backend/internal/api/membership"
	"membership-backend/internal/api/newsletter"
	"membership-backend/internal/api/notification"
	"membership-backend/internal/api/profile"
	commonauth "membership-backend/internal/common/auth"
	"membership-backend/internal/common/config"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/common/metrics"
)

// Handlers bundles every feature handler the server mounts.
type Handlers struct {
	Auth         *auth.Handler
	Profile      *profile.Handler
	Membership   *membership.Handler
	Newsletter   *newsletter.Handler
	Notification *notification.Handler
	Admin        *admin.Handler
}

// Server owns the gin engine and the listener configuration.
type Server struct {
	engine *gin.Engine
	cfg    config.ServerConfig
	log    logger.Logger
}

// New builds the engine with the full middleware chain and all routes
// registered. Three route groups exist: /api for public endpoints,
// /api (token-guarded) for member endpoints, and /api/admin which
// additionally requires the admin claim.
func New(cfg config.ServerConfig, tokens *commonauth.TokenManager, h Handlers, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(CORS(cfg.AllowedOrigins))
	engine.Use(metrics.Middleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := engine.Group("/api")
	authed := engine.Group("/api")
	authed.Use(commonauth.Required(tokens))
	adminGroup := engine.Group("/api/admin")
	adminGroup.Use(commonauth.Required(tokens), commonauth.AdminRequired())

	h.Auth.Register(public)
	h.Profile.Register(authed)
	h.Membership.Register(authed)
	h.Newsletter.Register(public, adminGroup)
	h.Notification.Register(authed, adminGroup)
	h.Admin.Register(adminGroup)

	return &Server{engine: engine, cfg: cfg, log: log}
}

// Engine exposes the underlying router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// HTTPServer wraps the engine in an http.Server with the configured
// listener address and timeouts, ready for ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  config.GetDuration(s.cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.WriteTimeout),
	}
}
