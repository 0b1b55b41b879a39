// Package server wires the gateway's HTTP API: the chat proxy, the
// dashboard view-model endpoints and the health check.
package server

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/sabio/unified-ai-frontend/pkg/backend"
	"github.com/sabio/unified-ai-frontend/pkg/bus"
	"github.com/sabio/unified-ai-frontend/pkg/config"
	"github.com/sabio/unified-ai-frontend/pkg/session"
	"golang.org/x/time/rate"
)

// Server holds the gateway's request-handling state.
type Server struct {
	cfg      *config.Config
	backend  *backend.Client
	sessions *session.Store
	feed     *bus.ChartFeed
	limiter  *rate.Limiter
	echo     *echo.Echo
}

// New assembles the server and registers all routes.
func New(cfg *config.Config, backendClient *backend.Client) *Server {
	s := &Server{
		cfg:      cfg,
		backend:  backendClient,
		sessions: session.NewStore(),
		feed:     bus.NewChartFeed(),
		limiter:  newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	e := echo.New()
	e.Use(s.rateLimit)

	api := e.Group("/api")
	api.POST("/chat", s.handleChat)
	api.GET("/chat/history", s.handleChatHistory)
	api.GET("/chat/charts", s.handleChatCharts)
	api.GET("/analytics/events", s.handleEventAnalytics)
	api.GET("/analytics/workflows", s.handleWorkflowAnalytics)
	api.GET("/analytics/clients", s.handleClientAnalytics)
	api.GET("/contacts/stuck", s.handleStuckContacts)
	api.GET("/automation/logs", s.handleAutomationLogs)

	e.GET("/health", s.handleHealth)

	s.echo = e
	return s
}

// Handler returns the HTTP handler for the gateway.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ChartFeed exposes the chart feed so callers can subscribe to updates.
func (s *Server) ChartFeed() *bus.ChartFeed {
	return s.feed
}

// errorEnvelope is the uniform failure shape for every endpoint.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) sendError(c *echo.Context, status int, msg, details string) error {
	return c.JSON(status, errorEnvelope{Success: false, Error: msg, Details: details})
}
