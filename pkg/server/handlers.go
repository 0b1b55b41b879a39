package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/sabio/unified-ai-frontend/pkg/backend"
	"github.com/sabio/unified-ai-frontend/pkg/dashboard"
	"github.com/sabio/unified-ai-frontend/pkg/normalize"
	"github.com/sabio/unified-ai-frontend/pkg/session"
	"github.com/sabio/unified-ai-frontend/pkg/visualize"
)

const defaultSessionKey = "default"

// chatRequest is the incoming chat payload. The conversation id is optional;
// once the backend issues one it is reused for the whole session so the
// backend retains dialogue memory.
type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"userId,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
}

func (r *chatRequest) sessionKey() string {
	if r.SessionID != "" {
		return r.SessionID
	}
	if r.UserID != "" {
		return r.UserID
	}
	return defaultSessionKey
}

// handleChat validates the request, forwards it to the backend and relays the
// backend's status and body unchanged on success. Side effects: the session
// transcript records both turns and event-analytics responses feed the
// chart feed.
func (s *Server) handleChat(c *echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return s.sendError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err), "")
	}

	if strings.TrimSpace(req.Message) == "" {
		return s.sendError(c, http.StatusBadRequest, "Message is required", "")
	}

	sessionKey := req.sessionKey()
	conv := s.sessions.GetOrCreate(sessionKey)

	if req.ConversationID == "" {
		req.ConversationID = conv.ConversationID()
	}

	slog.Info("chat request", "session", sessionKey, "message_length", len(req.Message))

	conv.Append(session.AuthorUser, req.Message, session.StatusSuccess)

	reply, err := s.backend.Chat(c.Request().Context(), backend.ChatRequest{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
	})
	if err != nil {
		slog.Error("chat proxy failed", "session", sessionKey, "error", err)
		conv.Append(session.AuthorAI, "The assistant is unreachable. Please try again.", session.StatusError)
		return s.sendError(c, http.StatusInternalServerError, "Failed to reach assistant backend", err.Error())
	}

	if !reply.OK() {
		slog.Warn("chat rejected by backend", "session", sessionKey, "status", reply.StatusCode)
		conv.Append(session.AuthorAI, "The assistant rejected the request.", session.StatusError)
		return s.sendError(c, reply.StatusCode, "Assistant backend rejected the request", truncateBody(reply.Body))
	}

	resp, err := normalize.Decode(reply.Body)
	if err != nil {
		// Still a successful proxy turn; relay unchanged and skip side effects.
		slog.Warn("unparseable backend chat response", "session", sessionKey, "error", err)
		return c.Blob(reply.StatusCode, echo.MIMEApplicationJSON, reply.Body)
	}

	conv.BindConversationID(resp.ConversationID)

	status := session.StatusSuccess
	if !resp.Success {
		status = session.StatusError
	}
	conv.Append(session.AuthorAI, normalize.Format(resp), status)

	if resp.Success && resp.ToolExecuted == normalize.ToolEventAnalytics {
		if records, err := visualize.FromResponse(resp); err == nil {
			s.feed.Publish(sessionKey, records)
		}
	}

	return c.Blob(reply.StatusCode, echo.MIMEApplicationJSON, reply.Body)
}

// handleChatHistory returns the chat pane transcript for a session.
func (s *Server) handleChatHistory(c *echo.Context) error {
	key := sessionKeyParam(c)
	conv := s.sessions.GetOrCreate(key)

	return c.JSON(http.StatusOK, map[string]any{
		"success":         true,
		"session_id":      key,
		"conversation_id": conv.ConversationID(),
		"messages":        conv.Messages(),
	})
}

// handleChatCharts returns the latest chart records for a session, capped
// per chart type. The table view receives the full set.
func (s *Server) handleChatCharts(c *echo.Context) error {
	key := sessionKeyParam(c)

	kind := visualize.ChartKind(c.QueryParam("chart"))
	if kind == "" {
		kind = visualize.ChartBar
	}

	update, ok := s.feed.Latest(key)
	if !ok || len(update.Records) == 0 {
		return s.sendError(c, http.StatusNotFound, "No chart data available", "")
	}

	records := visualize.Truncate(update.Records, kind)
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"chart":      kind,
		"total":      len(update.Records),
		"updated_at": update.Timestamp,
		"records":    records,
	})
}

// handleEventAnalytics proxies event analytics and maps the payload into
// chart records.
func (s *Server) handleEventAnalytics(c *echo.Context) error {
	organizationID := c.QueryParam("organizationId")
	if organizationID == "" {
		return s.sendError(c, http.StatusBadRequest, "organizationId is required", "")
	}
	timeframe := c.QueryParam("timeframe")
	if timeframe == "" {
		timeframe = "7d"
	}

	reply, err := s.proxyGet(c, func(ctx context.Context) (*backend.Reply, error) {
		return s.backend.EventAnalytics(ctx, organizationID, timeframe)
	})
	if reply == nil {
		return err
	}

	resp, err := normalize.Decode(reply.Body)
	if err != nil {
		return s.sendError(c, http.StatusBadGateway, "Malformed analytics payload", err.Error())
	}

	records, err := visualize.FromResponse(resp)
	if errors.Is(err, visualize.ErrNoData) {
		return c.JSON(http.StatusOK, map[string]any{
			"success":        true,
			"noData":         true,
			"organizationId": organizationID,
			"timeframe":      timeframe,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":        true,
		"organizationId": organizationID,
		"timeframe":      timeframe,
		"total":          len(records),
		"records":        records,
	})
}

// handleWorkflowAnalytics serves the workflow status dashboard tab.
func (s *Server) handleWorkflowAnalytics(c *echo.Context) error {
	organizationID := c.QueryParam("organizationId")
	scope := dashboard.ScopeGlobal
	if organizationID != "" {
		scope = dashboard.ScopeOrganization
	}

	reply, err := s.proxyGet(c, func(ctx context.Context) (*backend.Reply, error) {
		return s.backend.WorkflowStatistics(ctx, organizationID)
	})
	if reply == nil {
		return err
	}

	snapshot, err := dashboard.SnapshotFromJSON(reply.Body, scope, organizationID)
	if err != nil {
		return s.sendError(c, http.StatusBadGateway, "Malformed workflow analytics payload", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "snapshot": snapshot})
}

// handleClientAnalytics serves the cross-organization client dashboard tab.
func (s *Server) handleClientAnalytics(c *echo.Context) error {
	reply, err := s.proxyGet(c, func(ctx context.Context) (*backend.Reply, error) {
		return s.backend.ClientAnalytics(ctx)
	})
	if reply == nil {
		return err
	}

	snapshot, err := dashboard.SnapshotFromJSON(reply.Body, dashboard.ScopeGlobal, "")
	if err != nil {
		return s.sendError(c, http.StatusBadGateway, "Malformed client analytics payload", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "snapshot": snapshot})
}

// handleStuckContacts serves the stuck-contact diagnostics tab.
func (s *Server) handleStuckContacts(c *echo.Context) error {
	organizationID := c.QueryParam("organizationId")
	if organizationID == "" {
		return s.sendError(c, http.StatusBadRequest, "organizationId is required", "")
	}

	reply, err := s.proxyGet(c, func(ctx context.Context) (*backend.Reply, error) {
		return s.backend.StuckContacts(ctx, organizationID)
	})
	if reply == nil {
		return err
	}

	contacts, err := dashboard.StuckContactsFromJSON(reply.Body)
	if err != nil {
		return s.sendError(c, http.StatusBadGateway, "Malformed stuck contacts payload", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":        true,
		"organizationId": organizationID,
		"total":          len(contacts),
		"contacts":       contacts,
	})
}

// handleAutomationLogs serves the automation pipeline log viewer.
func (s *Server) handleAutomationLogs(c *echo.Context) error {
	organizationID := c.QueryParam("organizationId")
	if organizationID == "" {
		return s.sendError(c, http.StatusBadRequest, "organizationId is required", "")
	}

	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return s.sendError(c, http.StatusBadRequest, "limit must be a positive integer", "")
		}
		limit = parsed
	}

	reply, err := s.proxyGet(c, func(ctx context.Context) (*backend.Reply, error) {
		return s.backend.AutomationLogs(ctx, organizationID, limit)
	})
	if reply == nil {
		return err
	}

	logs, err := dashboard.AutomationLogsFromJSON(reply.Body)
	if err != nil {
		return s.sendError(c, http.StatusBadGateway, "Malformed automation logs payload", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":        true,
		"organizationId": organizationID,
		"total":          len(logs),
		"logs":           logs,
	})
}

// handleHealth reports liveness plus upstream reachability.
func (s *Server) handleHealth(c *echo.Context) error {
	type upstreamStatus struct {
		URL       string `json:"url"`
		Reachable bool   `json:"reachable"`
		Error     string `json:"error,omitempty"`
	}
	type healthStatus struct {
		Status      string         `json:"status"`
		Environment string         `json:"environment"`
		Upstream    upstreamStatus `json:"upstream"`
	}

	status := healthStatus{
		Status:      "ok",
		Environment: s.cfg.AppEnv,
		Upstream:    upstreamStatus{URL: s.backend.BaseURL(), Reachable: true},
	}

	if err := s.backend.Ping(c.Request().Context()); err != nil {
		status.Status = "degraded"
		status.Upstream.Reachable = false
		status.Upstream.Error = err.Error()
		return c.JSON(http.StatusServiceUnavailable, status)
	}

	return c.JSON(http.StatusOK, status)
}

// proxyGet runs a backend call and writes the uniform failure envelope on
// network failure or upstream rejection. A nil reply means the response has
// already been written.
func (s *Server) proxyGet(c *echo.Context, call func(ctx context.Context) (*backend.Reply, error)) (*backend.Reply, error) {
	reply, err := call(c.Request().Context())
	if err != nil {
		slog.Error("backend request failed", "path", c.Request().URL.Path, "error", err)
		return nil, s.sendError(c, http.StatusInternalServerError, "Failed to reach analytics backend", err.Error())
	}

	if !reply.OK() {
		slog.Warn("backend rejected request", "path", c.Request().URL.Path, "status", reply.StatusCode)
		return nil, s.sendError(c, reply.StatusCode, "Analytics backend rejected the request", truncateBody(reply.Body))
	}

	return reply, nil
}

func sessionKeyParam(c *echo.Context) string {
	if key := c.QueryParam("session"); key != "" {
		return key
	}
	return defaultSessionKey
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
