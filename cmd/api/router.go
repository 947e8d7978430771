package main

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/scamwatch/internal/incidents"
	"github.com/richxcame/scamwatch/pkg/common"
	"github.com/richxcame/scamwatch/pkg/config"
	"github.com/richxcame/scamwatch/pkg/middleware"
)

const (
	serviceName    = "risk-api"
	serviceVersion = "1.0.0"
)

func corsOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func newRouter(cfg *config.Config, handler *incidents.Handler, checks map[string]func() error, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(extra...)
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.SecurityHeaders())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = corsOrigins(cfg.Server.CORSOrigins)
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.CorrelationIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Health check and metrics
	router.GET("/healthz", common.HealthCheck(serviceName, serviceVersion))
	router.GET("/health/live", common.HealthCheck(serviceName, serviceVersion))
	router.GET("/health/ready", common.ReadinessCheck(serviceName, serviceVersion, checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router.Group("/api/v1"))

	return router
}
