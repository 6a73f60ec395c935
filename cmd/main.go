package main

import (
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func newRouter(svc *serviceContext, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(gzip.Gzip(gzip.DefaultCompression))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = svc.config.CorsOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsCfg))

	router.Use(middleware...)

	router.GET("/favicon.ico", svc.ignoreHandler)

	router.GET("/version", svc.versionHandler)
	router.GET("/healthcheck", svc.healthCheckHandler)

	router.GET("/items", svc.searchHandler)
	router.GET("/pages", svc.searchHandler)

	router.PUT("/item", svc.writeHandler)
	router.PUT("/page", svc.writeHandler)

	router.DELETE("/item/:id", svc.deleteHandler)
	router.DELETE("/page/:id", svc.deleteHandler)

	if svc.config.PprofEnabled == true {
		pprof.Register(router)
	}

	router.Use(static.Serve("/assets", static.LocalFile("./assets", false)))

	return router
}

/**
 * Main entry point for the web service
 */
func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("configuration error: %s", err.Error())
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %s", err.Error())
	}

	defer logger.Sync()

	zap.S().Infof("===> dcp-search-ws starting up <===")

	cfg.log()

	svc := initializeService(cfg)

	gin.SetMode(gin.ReleaseMode)

	p := ginprometheus.NewPrometheus("gin")

	router := newRouter(svc, p.HandlerFunc())

	// roundabout setup of /metrics endpoint to avoid double-gzip of response
	h := promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{DisableCompression: true}))

	router.GET(p.MetricsPath, func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	})

	portStr := fmt.Sprintf(":%s", cfg.ListenPort)
	zap.S().Infof("Start service on %s", portStr)

	zap.S().Fatal(router.Run(portStr))
}
