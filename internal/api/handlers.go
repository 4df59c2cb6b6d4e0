package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"studiodesk/internal/services/dashboard"
	"studiodesk/internal/services/support"
	"studiodesk/internal/session"
	"studiodesk/pkg/errors"
)

// Assistant runs the agent-backed query flows
type Assistant interface {
	Support(ctx context.Context, sessionID, prompt string) (string, error)
	Dashboard(ctx context.Context, sessionID, prompt string) (string, error)
}

type handlers struct {
	assistant      Assistant
	support        *support.Service
	dashboard      *dashboard.Service
	sessionHeader  string
	defaultSession string
}

type agentRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id"`
}

type agentResponse struct {
	Response string `json:"response"`
}

func (h *handlers) supportQuery(c echo.Context) error {
	return h.agentQuery(c, "support", h.assistant.Support)
}

func (h *handlers) dashboardQuery(c echo.Context) error {
	return h.agentQuery(c, "dashboard", h.assistant.Dashboard)
}

func (h *handlers) agentQuery(c echo.Context, agent string, run func(ctx context.Context, sessionID, prompt string) (string, error)) error {
	var req agentRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return errorJSON(c, http.StatusBadRequest, "prompt is required")
	}

	response, err := run(c.Request().Context(), h.sessionID(c, req.SessionID), req.Prompt)
	if err != nil {
		return errorJSON(c, agentStatus(err), "Error running "+agent+" agent: "+err.Error())
	}
	return c.JSON(http.StatusOK, agentResponse{Response: response})
}

// sessionID prefers the body, then the session header, then the configured default
func (h *handlers) sessionID(c echo.Context, fromBody string) string {
	id := strings.TrimSpace(fromBody)
	if id == "" && h.sessionHeader != "" {
		id = strings.TrimSpace(c.Request().Header.Get(h.sessionHeader))
	}
	if id == "" {
		id = h.defaultSession
	}
	return session.Normalize(id)
}

func agentStatus(err error) int {
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, errors.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"error": message})
}
