package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RootMessage is returned by GET /.
const RootMessage = "Coffee Growth Tracker Backend Running"

// Diagnostics limits.
const (
	maxDiagCollections = 10
	maxDiagErrorLen    = 80
	diagTimeout        = 5 * time.Second
)

// Status strings reported by GET /test.
const (
	statusRunning      = "running"
	statusConnected    = "connected"
	statusNotConnected = "not connected"
	statusSet          = "set"
	statusNotSet       = "not set"
)

// root handles GET /.
func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: RootMessage})
}

// diagnostics handles GET /test. It always answers 200; database problems
// are reported in the body.
func (s *Server) diagnostics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), diagTimeout)
	defer cancel()

	resp := DiagnosticsResponse{
		Backend:          statusRunning,
		Database:         "not available",
		DatabaseURL:      s.envStatus(s.opts.URLEnv),
		DatabaseName:     s.envStatus(s.opts.NameEnv),
		DatabaseInUse:    s.store.Name(),
		ConnectionStatus: statusNotConnected,
		Collections:      []string{},
	}

	if err := s.store.Ping(ctx); err != nil {
		resp.Database = "error: " + truncate(err.Error(), maxDiagErrorLen)
		slog.Warn("api: diagnostics ping failed", "err", err)
	} else {
		resp.ConnectionStatus = statusConnected
		names, err := s.store.Collections(ctx)
		if err != nil {
			resp.Database = "connected but error: " + truncate(err.Error(), maxDiagErrorLen)
		} else {
			resp.Database = "connected and working"
			if len(names) > maxDiagCollections {
				names = names[:maxDiagCollections]
			}
			resp.Collections = names
		}
	}

	if s.metrics != nil {
		if served, err := s.metrics.RequestsServed(); err == nil {
			resp.RequestsServed = &served
		} else {
			slog.Warn("api: read request counter", "err", err)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) envStatus(name string) string {
	if name == "" {
		return statusNotSet
	}
	if v, ok := s.opts.LookupEnv(name); ok && v != "" {
		return statusSet
	}
	return statusNotSet
}
