// Package server exposes the HTTP API: session lifecycle, receipt scanning,
// member management, settlement views, and exports.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vsplit/vsplit/internal/async"
	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/export"
	"github.com/vsplit/vsplit/internal/pipeline"
	"github.com/vsplit/vsplit/internal/repository"
	session "github.com/vsplit/vsplit/internal/services/session"
)

// Server wires the HTTP routes to the session service and scan pipeline.
type Server struct {
	sessions  *session.Service
	processor *pipeline.Processor
	queue     async.Queue
	exporter  *export.Service
	store     *repository.Store
	logger    *slog.Logger
}

func New(sessions *session.Service, processor *pipeline.Processor, queue async.Queue, exporter *export.Service, store *repository.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sessions:  sessions,
		processor: processor,
		queue:     queue,
		exporter:  exporter,
		store:     store,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)

	v1 := r.Group("/v1")
	{
		v1.POST("/sessions", s.createSession)
		v1.GET("/sessions/:id", s.getSession)
		v1.DELETE("/sessions/:id", s.deleteSession)
		v1.POST("/sessions/:id/receipt", s.uploadReceipt)

		v1.POST("/sessions/:id/members", s.addMember)
		v1.DELETE("/sessions/:id/members/:memberID", s.removeMember)
		v1.POST("/sessions/:id/members/:memberID/selections/:itemID", s.toggleSelection)
		v1.POST("/sessions/:id/members/:memberID/payment", s.togglePayment)
		v1.GET("/sessions/:id/members/:memberID/share", s.memberShare)
		v1.GET("/sessions/:id/members/:memberID/qr", s.memberQR)

		v1.GET("/sessions/:id/summary", s.summary)
		v1.GET("/sessions/:id/export", s.exportXLSX)

		v1.GET("/history", s.history)
	}
	return r
}

// requestLogger tags each request with an id and logs method, path, status
// and latency.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), requestID))
		c.Header("X-Request-Id", requestID)

		c.Next()

		s.logger.Info("http.request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.HealthCheck(c.Request.Context(), 2*time.Second); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
