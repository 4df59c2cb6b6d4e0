// Package mcp exposes the tool catalogue and the assistants over the Model Context Protocol.
package mcp

import (
	"context"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"studiodesk/internal/session"
	"studiodesk/internal/tools"
	"studiodesk/internal/tools/shared"
	"studiodesk/pkg/logger"
)

// Assistant runs the agent-backed query flows
type Assistant interface {
	Support(ctx context.Context, sessionID, prompt string) (string, error)
	Dashboard(ctx context.Context, sessionID, prompt string) (string, error)
}

// Options configure the server. Without an Assistant only the catalogue tools are served.
type Options struct {
	Name      string
	Version   string
	Assistant Assistant
	Log       *logger.Logger
}

// AskInput is the argument of the ask_support and ask_dashboard tools
type AskInput struct {
	Prompt    string `json:"prompt" jsonschema:"The question in any language"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Conversation id; defaults to default_user"`
}

// NewServer registers every catalogue tool, keeping its JSON schema as the input schema.
// Tools without parameters get an empty object schema.
func NewServer(registry *tools.Registry, opts Options) *mcpsdk.Server {
	if opts.Name == "" {
		opts.Name = "studiodesk"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	log := opts.Log
	if log == nil {
		log = logger.Get()
	}
	log = log.With("component", "mcp")

	srv := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    opts.Name,
		Version: opts.Version,
	}, nil)

	for _, name := range registry.List() {
		t, _ := registry.Get(name)
		def := t.Definition()
		schema := def.Parameters
		if schema == nil {
			schema = shared.ObjectSchema(nil)
		}

		srv.AddTool(&mcpsdk.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: schema,
			Annotations: &mcpsdk.ToolAnnotations{
				Title:        strings.ReplaceAll(def.Name, "_", " "),
				ReadOnlyHint: def.ReadOnly,
			},
		}, catalogueHandler(registry, def.Name, log))
	}

	if opts.Assistant != nil {
		mcpsdk.AddTool(srv, &mcpsdk.Tool{
			Name:        "ask_support",
			Description: "Ask the fitness studio support assistant about clients, orders, payments and classes",
		}, askHandler(opts.Assistant.Support))

		mcpsdk.AddTool(srv, &mcpsdk.Tool{
			Name:        "ask_dashboard",
			Description: "Ask the business analytics assistant about revenue, clients, enrollments and attendance",
		}, askHandler(opts.Assistant.Dashboard))
	}

	log.Infow("MCP server configured", "tools", len(registry.List()), "assistant", opts.Assistant != nil)
	return srv
}

func catalogueHandler(registry *tools.Registry, name string, log *logger.Logger) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		raw := ""
		if req.Params != nil {
			raw = string(req.Params.Arguments)
		}

		text, err := registry.Execute(ctx, name, raw)
		if err != nil {
			log.Debugw("MCP tool call failed", "tool", name, "error", err)
			return textResult(text, true), nil
		}
		return textResult(text, false), nil
	}
}

func askHandler(run func(ctx context.Context, sessionID, prompt string) (string, error)) mcpsdk.ToolHandlerFor[AskInput, any] {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, in AskInput) (*mcpsdk.CallToolResult, any, error) {
		if strings.TrimSpace(in.Prompt) == "" {
			return textResult("prompt is required", true), nil, nil
		}
		answer, err := run(ctx, session.Normalize(in.SessionID), in.Prompt)
		if err != nil {
			return textResult("Error: "+err.Error(), true), nil, nil
		}
		return textResult(answer, false), nil, nil
	}
}

func textResult(text string, isError bool) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
		IsError: isError,
	}
}
