package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/coffeetrack/coffeetrack/server/internal/metrics"
	"github.com/coffeetrack/coffeetrack/server/internal/stats"
	"github.com/coffeetrack/coffeetrack/server/internal/store"
)

// DefaultReadingsLimit is used when Options.ReadingsLimit is zero.
const DefaultReadingsLimit = 20

// Options configures optional parts of the API.
type Options struct {
	// Metrics enables request instrumentation and GET /metrics.
	Metrics *metrics.Metrics

	// AllowedOrigins is the initial CORS allow list. "*" allows any origin;
	// an empty list disables CORS headers.
	AllowedOrigins []string

	// ReadingsLimit is the default page size of GET /sensor-readings/latest.
	ReadingsLimit int

	// URLEnv and NameEnv name the environment variables reported by GET /test.
	URLEnv  string
	NameEnv string

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Server is the HTTP handler for all endpoints.
type Server struct {
	engine  *gin.Engine
	store   store.Store
	stats   *stats.Service
	metrics *metrics.Metrics
	cors    *corsPolicy
	opts    Options
}

// New creates a Server reading and writing through st and registers all
// routes. When opts.Metrics is set, st is instrumented as well.
func New(st store.Store, opts Options) *Server {
	if opts.ReadingsLimit <= 0 {
		opts.ReadingsLimit = DefaultReadingsLimit
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.Metrics != nil {
		st = metrics.Instrument(st, opts.Metrics)
	}

	s := &Server{
		engine:  gin.New(),
		store:   st,
		stats:   stats.NewService(st),
		metrics: opts.Metrics,
		cors:    newCORSPolicy(opts.AllowedOrigins),
		opts:    opts,
	}

	s.engine.Use(gin.Recovery(), requestID(), logRequests())
	if s.metrics != nil {
		s.engine.Use(instrument(s.metrics))
	}
	s.engine.Use(s.cors.middleware())
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/", s.root)
	r.GET("/test", s.diagnostics)

	r.POST("/plants", s.createPlant)
	r.GET("/plants", s.listPlants)

	r.POST("/growth-logs", s.createGrowthLog)
	r.GET("/growth-logs", s.listGrowthLogs)

	r.POST("/sensor-readings", s.createSensorReading)
	r.GET("/sensor-readings/latest", s.latestSensorReadings)

	r.GET("/stats/plant", s.plantStats)

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		jsonErr(c, http.StatusNotFound, "not found")
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// SetAllowedOrigins replaces the CORS allow list. Safe to call while
// serving.
func (s *Server) SetAllowedOrigins(origins []string) {
	s.cors.set(origins)
}
