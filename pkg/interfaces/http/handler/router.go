package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/cockpit/pkg/application/services/gantt"
	"github.com/vsinha/cockpit/pkg/infrastructure/logging"
	"github.com/vsinha/cockpit/pkg/interfaces/http/middleware"
)

const readinessTimeout = 3 * time.Second

// BuildInfo is reported by GET /version
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
}

// ReadinessCheck is one dependency checked by GET /health/ready
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// RouterConfig wires the router's dependencies
type RouterConfig struct {
	Mode         string
	AllowOrigins []string
	Build        BuildInfo
	Readiness    []ReadinessCheck
}

// NewRouter builds the gin engine with middleware and every API route
func NewRouter(svc *gantt.Service, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	logger = logging.OrNop(logger)
	if cfg.Mode == gin.ReleaseMode || cfg.Mode == gin.TestMode {
		gin.SetMode(cfg.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.AllowOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/health/ready", readiness(cfg.Readiness, logger))
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, cfg.Build)
	})

	ganttHandler := NewGanttHandler(svc, logger)
	api := router.Group("/api/v1")
	{
		g := api.Group("/gantt")
		g.POST("/schedule", ganttHandler.Schedule)
		g.GET("/:product/flat", ganttHandler.Flat)
		g.GET("/:product/shortages.csv", ganttHandler.ShortagesCSV)
		g.GET("/:product/shortages.xlsx", ganttHandler.ShortagesXLSX)

		api.POST("/bom/tree", ganttHandler.InventoryTree)
		api.POST("/forecast", Forecast)
	}

	return router
}

func readiness(checks []ReadinessCheck, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		failed := gin.H{}
		for _, check := range checks {
			if err := check.Ping(ctx); err != nil {
				logger.Warn("Readiness check failed", zap.String("check", check.Name), zap.Error(err))
				failed[check.Name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
