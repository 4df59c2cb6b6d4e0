package bootstrap

import (
	"context"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"studiodesk/internal/adapters/ai"
	chclient "studiodesk/internal/adapters/clickhouse"
	"studiodesk/internal/adapters/config"
	"studiodesk/internal/adapters/kafka"
	mongoclient "studiodesk/internal/adapters/mongo"
	pgclient "studiodesk/internal/adapters/postgres"
	redisclient "studiodesk/internal/adapters/redis"
	"studiodesk/internal/agents"
	"studiodesk/internal/api"
	"studiodesk/internal/api/health"
	"studiodesk/internal/consumers"
	"studiodesk/internal/domain/memory"
	"studiodesk/internal/events"
	chrepo "studiodesk/internal/repository/clickhouse"
	mongorepo "studiodesk/internal/repository/mongo"
	"studiodesk/internal/services/assistant"
	"studiodesk/internal/services/dashboard"
	"studiodesk/internal/services/support"
	"studiodesk/internal/services/translate"
	"studiodesk/internal/tools"
	"studiodesk/internal/workers"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// Container holds all application dependencies and their lifecycle.
// Components are organized in initialization order.
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Data stores. Only Mongo is mandatory; the others stay nil when disabled.
	Mongo *mongoclient.Client
	PG    *pgclient.Client
	CH    *chclient.Client
	Redis *redisclient.Client

	Repos       *Repositories
	Adapters    *Adapters
	Services    *Services
	Business    *Business
	Application *Application
	Background  *Background

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups all domain repositories
type Repositories struct {
	Clients    *mongorepo.ClientRepository
	Courses    *mongorepo.CourseRepository
	Classes    *mongorepo.ClassRepository
	Orders     *mongorepo.OrderRepository
	Payments   *mongorepo.PaymentRepository
	Attendance *mongorepo.AttendanceRepository
	Memory     memory.Repository
	AIUsage    *chrepo.AIUsageRepository // nil without ClickHouse
}

// Adapters groups external adapters
type Adapters struct {
	KafkaProducer   *kafka.Producer // nil without Kafka
	AIUsageConsumer *kafka.Consumer // nil unless Kafka and ClickHouse are both enabled
	Publisher       events.Publisher
	ChatProvider    ai.ChatProvider
}

// Services groups application services
type Services struct {
	Support    *support.Service
	Dashboard  *dashboard.Service
	Memory     *memory.Service
	Translator translate.Translator
	Assistant  *assistant.Service
}

// Business groups the agent machinery
type Business struct {
	ToolRegistry  *tools.Registry
	AgentRegistry *agents.Registry
	Executor      *agents.Executor
	Model         string
}

// Application groups the served surfaces
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
	MCPServer     *mcpsdk.Server
}

// Background groups background processing components
type Background struct {
	Scheduler  *workers.Scheduler
	AIUsageSvc *consumers.AIUsageConsumer
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:       &Repositories{},
		Adapters:    &Adapters{},
		Services:    &Services{},
		Business:    &Business{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInitCore initializes everything up to the agent machinery.
// Panics on any initialization error (fail-fast at startup).
func (c *Container) MustInitCore() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitAdapters()
	c.MustInitServices()
	c.MustInitBusiness()
}

// MustInit initializes the full HTTP service
func (c *Container) MustInit() {
	c.MustInitCore()
	c.MustInitApplication()
	c.MustInitBackground()
}

// Start starts background components and the HTTP server
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if err := c.startBackground(); err != nil {
		return err
	}

	if c.Application.HTTPServer != nil {
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			if err := c.Application.HTTPServer.Start(); err != nil {
				c.Log.Errorf("HTTP server failed: %v", err)
				c.Cancel()
			}
		}()
	}

	c.Log.Info("✓ All systems operational")
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")
	c.Cancel()

	c.Lifecycle.Shutdown(ShutdownTargets{
		WG:           c.WG,
		HTTPServer:   c.Application.HTTPServer,
		Scheduler:    c.Background.Scheduler,
		Producer:     c.Adapters.KafkaProducer,
		Mongo:        c.Mongo,
		PG:           c.PG,
		CH:           c.CH,
		Redis:        c.Redis,
		ErrorTracker: c.ErrorTracker,
	}, c.Log)
}

// GetMetrics returns counts for startup logging
func (c *Container) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"tools":  len(c.Business.ToolRegistry.List()),
		"agents": len(c.Business.AgentRegistry.List()),
	}
}
