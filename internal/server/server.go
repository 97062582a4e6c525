package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gmaragao/profAI/internal/engine"
	"github.com/gmaragao/profAI/internal/repository"
)

// defaultActionWindow is used when GET /actions is called without a range.
const defaultActionWindow = 7 * 24 * time.Hour

// PipelineRunner triggers one pipeline cycle on demand.
type PipelineRunner interface {
	RunOnce(ctx context.Context) error
}

// Server exposes the audit surface of the bot: stored intents, action records
// with their outcomes, and a manual pipeline trigger.
type Server struct {
	router  *gin.Engine
	intents repository.IntentRepository
	actions repository.ActionRepository
	runner  PipelineRunner
	logger  *zap.Logger
}

// New builds the HTTP server and registers its routes.
func New(intents repository.IntentRepository, actions repository.ActionRepository, runner PipelineRunner, logger *zap.Logger) *Server {
	s := &Server{
		router:  gin.Default(),
		intents: intents,
		actions: actions,
		runner:  runner,
		logger:  logger,
	}

	s.router.GET("/health", s.health)

	api := s.router.Group("/api/v1")
	api.GET("/intents", s.listIntents)
	api.GET("/actions", s.listActions)
	api.POST("/run", s.triggerRun)

	return s
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listIntents(c *gin.Context) {
	intents, err := s.intents.List(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to list intents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list intents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"intents": intents})
}

func (s *Server) listActions(c *gin.Context) {
	now := time.Now().UTC()
	from := now.Add(-defaultActionWindow)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp, expected RFC3339"})
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp, expected RFC3339"})
			return
		}
		to = parsed
	}

	actions, err := s.actions.GetByDateRange(c.Request.Context(), from, to)
	if err != nil {
		s.logger.Error("Failed to list actions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list actions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"actions": actions, "from": from, "to": to})
}

func (s *Server) triggerRun(c *gin.Context) {
	err := s.runner.RunOnce(c.Request.Context())
	switch {
	case errors.Is(err, engine.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "a pipeline run is already in progress"})
	case err != nil:
		s.logger.Error("Manual pipeline run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "completed"})
	}
}
