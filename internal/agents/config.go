package agents

import (
	"time"

	"studiodesk/internal/tools"
	"studiodesk/pkg/templates"
)

// AgentConfig captures runtime settings for an agent instance.
type AgentConfig struct {
	Type                 AgentType
	Name                 string
	Role                 string
	Goal                 string
	Backstory            string
	Tools                []string
	SystemPromptTemplate string

	// MaxIterations bounds the tool-calling rounds. Zero uses the executor default.
	MaxIterations int
	MaxTokens     int
	TotalTimeout  time.Duration
}

const supportBackstory = `You are an experienced customer service specialist for a premium fitness studio.
You have deep knowledge of fitness programs, class schedules, payment systems and client management.
You are helpful, patient and solution-oriented. You resolve client issues efficiently while staying friendly and professional.`

// DefaultAgentConfigs holds the two agents the studio exposes.
var DefaultAgentConfigs = map[AgentType]AgentConfig{
	AgentSupport: {
		Type:                 AgentSupport,
		Name:                 "SupportAgent",
		Role:                 "Fitness Studio Support Specialist",
		Goal:                 "Provide excellent customer service by handling inquiries about classes, orders, payments, and bookings with accuracy and professionalism",
		Backstory:            supportBackstory,
		Tools:                tools.SupportToolNames,
		SystemPromptTemplate: templates.AgentSupport,
		MaxTokens:            2048,
		TotalTimeout:         90 * time.Second,
	},
	AgentDashboard: {
		Type:                 AgentDashboard,
		Name:                 "DashboardAgent",
		Role:                 "Business Analytics Agent",
		Goal:                 "Provide analytics and metrics useful for business owners",
		Backstory:            "Business intelligence expert for fitness studio analytics.",
		Tools:                tools.DashboardToolNames,
		SystemPromptTemplate: templates.AgentDashboard,
		MaxTokens:            2048,
		TotalTimeout:         90 * time.Second,
	},
}
