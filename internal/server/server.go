// Package server is the alpd HTTP service: it decodes ALP commands posted
// as hex and reports the actions, partial on failure.
package server

import (
	"time"

	"github.com/danmuck/d7alp/internal/config"
	"github.com/danmuck/d7alp/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Service struct {
	Name     string    `json:"name"`
	Addr     string    `json:"addr"`
	Appeared time.Time `json:"appeared"`

	maxCommandBytes int
	authToken       string
	router          *gin.Engine
}

func Appear(cfg config.ServiceConfig) *Service {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger, cfg.Name))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies(normalizeProxies(cfg.TrustedProxies))

	limit := cfg.MaxCommandBytes
	if limit <= 0 {
		limit = config.DefaultMaxCommandBytes
	}
	return &Service{
		Name:            cfg.Name,
		Addr:            cfg.Addr,
		Appeared:        time.Now(),
		maxCommandBytes: limit,
		authToken:       cfg.AuthToken,
		router:          r,
	}
}

func (s *Service) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Service) Serve() error {
	s.RegisterRoutes()
	log.Info().
		Str("service", s.Name).
		Str("addr", s.Addr).
		Int("max_command_bytes", s.maxCommandBytes).
		Msg("alpd listening")
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}

func normalizeProxies(proxies []string) []string {
	if len(proxies) == 0 {
		return []string{"127.0.0.1", "::1"}
	}
	return proxies
}
