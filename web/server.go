package web

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"nyctaxi/warehouse/warehouse"
)

const (
	FetchDataPath = "/api/fetch_data"
	MetricsPath   = "/api/metrics"
	HealthPath    = "/health"
)

// ServiceConfig is everything the HTTP service needs. Runner answers Sample on
// the data endpoint and MetricsSample on the metrics endpoint.
type ServiceConfig struct {
	IsDev         bool
	Port          string
	Runner        warehouse.QueryRunner
	Sample        warehouse.Statement
	MetricsSample warehouse.Statement
}

// NewRouter builds the gin engine with middlewares and routes.
func NewRouter(cfg ServiceConfig) *gin.Engine {
	r := gin.New()
	setupMiddlewares(r, cfg.IsDev)

	r.GET(HealthPath, func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET(FetchDataPath, TripSampleHandler(cfg.Runner, cfg.Sample))
	r.GET(MetricsPath, MetricsHandler(cfg.Runner, cfg.MetricsSample))
	return r
}

func Serve(cfg ServiceConfig) error {
	if cfg.Runner == nil {
		return fmt.Errorf("no query runner configured")
	}
	if !cfg.IsDev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := NewRouter(cfg)
	log.Printf("Serving %s on :%s", FetchDataPath, cfg.Port)
	return r.Run(":" + cfg.Port)
}
