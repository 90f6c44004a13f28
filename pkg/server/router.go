package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ekjyotshinh/f1-replay-engine-go/version"
)

// Config carries the resolved settings the HTTP surface needs.
type Config struct {
	UpstreamURL     string
	UpstreamTimeout time.Duration
	AllowedOrigin   string
}

// NewRouter builds the gin engine: CORS, the pass-through proxy routes
// against the python data service and a version endpoint.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	proxy := newProxy(cfg.UpstreamURL, cfg.UpstreamTimeout)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "F1 Replay Engine (Go/Gin)")
	})
	r.GET("/api/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": version.Version})
	})

	r.GET("/api/years", proxy.passthrough("/api/years"))
	r.GET("/api/schedule/:year", func(c *gin.Context) {
		proxy.get(c, "/api/schedule/%s", c.Param("year"))
	})
	r.GET("/api/race/:year/:race_name", func(c *gin.Context) {
		proxy.get(c, "/api/race/%s/%s", c.Param("year"), c.Param("race_name"))
	})
	r.GET("/api/race/:year/:race_name/telemetry/:chunk", func(c *gin.Context) {
		proxy.get(c, "/api/race/%s/%s/telemetry/%s",
			c.Param("year"), c.Param("race_name"), c.Param("chunk"))
	})
	r.GET("/api/analytics/:year/:race_name", func(c *gin.Context) {
		proxy.get(c, "/api/analytics/%s/%s", c.Param("year"), c.Param("race_name"))
	})

	// admin endpoint
	r.POST("/api/clear-cache", proxy.clearCache)

	return r
}
