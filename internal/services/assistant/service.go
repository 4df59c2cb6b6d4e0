// Package assistant runs the two query flows behind the HTTP agent routes.
package assistant

import (
	"context"
	"strings"

	"studiodesk/internal/agents"
	"studiodesk/internal/events"
	"studiodesk/internal/services/translate"
	"studiodesk/internal/session"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// Memory is the session log the support flow reads context from and appends to
type Memory interface {
	Context(ctx context.Context, sessionID string) (string, error)
	Append(ctx context.Context, sessionID, message string)
}

// Service composes memory, translation and the agent runner
type Service struct {
	runner     agents.Runner
	memory     Memory
	translator translate.Translator
	publisher  events.Publisher
	log        *logger.Logger
}

// Deps holds the collaborators of the assistant service
type Deps struct {
	Runner     agents.Runner
	Memory     Memory
	Translator translate.Translator
	Publisher  events.Publisher
}

// NewService creates the assistant service. Translator and Publisher are optional.
func NewService(deps Deps, log *logger.Logger) *Service {
	if deps.Translator == nil {
		deps.Translator = translate.Passthrough{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}

	return &Service{
		runner:     deps.Runner,
		memory:     deps.Memory,
		translator: deps.Translator,
		publisher:  deps.Publisher,
		log:        log.With("component", "assistant"),
	}
}

// Support answers a client-facing question. The translated prompt is remembered
// before the agent runs, so it is kept even when the run fails.
func (s *Service) Support(ctx context.Context, sessionID, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.NewValidationError("prompt", "is required", prompt)
	}
	sessionID = session.Normalize(sessionID)
	s.received(ctx, sessionID, agents.AgentSupport, prompt)

	history, err := s.memory.Context(ctx, sessionID)
	if err != nil {
		s.log.Warnw("Continuing without session memory", "session_id", sessionID, "error", err)
		history = ""
	}

	translated := s.translator.Translate(ctx, prompt)

	s.memory.Append(ctx, sessionID, translated)

	return s.run(ctx, sessionID, agents.AgentSupport, ComposePrompt(history, translated))
}

// Dashboard answers a business analytics question on the raw prompt, without memory or translation
func (s *Service) Dashboard(ctx context.Context, sessionID, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.NewValidationError("prompt", "is required", prompt)
	}
	sessionID = session.Normalize(sessionID)
	s.received(ctx, sessionID, agents.AgentDashboard, prompt)

	return s.run(ctx, sessionID, agents.AgentDashboard, prompt)
}

// ComposePrompt prefixes the query with recalled memory. Empty memory yields the query alone.
func ComposePrompt(history, query string) string {
	if strings.TrimSpace(history) == "" {
		return query
	}
	return history + "\n\nNew Query: " + query
}

func (s *Service) run(ctx context.Context, sessionID string, agentType agents.AgentType, prompt string) (string, error) {
	res, err := s.runner.Run(agents.WithSession(ctx, sessionID), agentType, prompt)
	if err != nil {
		return "", errors.Wrapf(err, "%s agent", agentType)
	}
	return res.Response, nil
}

func (s *Service) received(ctx context.Context, sessionID string, agentType agents.AgentType, prompt string) {
	events.Emit(ctx, s.publisher, s.log, events.TypeQueryReceived, sessionID,
		events.NewQueryReceived(sessionID, string(agentType), prompt))
}
