package bootstrap

import (
	"context"
	"time"

	"studiodesk/internal/adapters/ai"
	chclient "studiodesk/internal/adapters/clickhouse"
	"studiodesk/internal/adapters/config"
	errnoop "studiodesk/internal/adapters/errors/noop"
	"studiodesk/internal/adapters/errors/sentry"
	"studiodesk/internal/adapters/kafka"
	mongoclient "studiodesk/internal/adapters/mongo"
	pgclient "studiodesk/internal/adapters/postgres"
	redisclient "studiodesk/internal/adapters/redis"
	"studiodesk/internal/agents"
	"studiodesk/internal/api"
	"studiodesk/internal/api/health"
	mcpserver "studiodesk/internal/api/mcp"
	"studiodesk/internal/api/middleware"
	"studiodesk/internal/domain/memory"
	"studiodesk/internal/events"
	"studiodesk/internal/metrics"
	chrepo "studiodesk/internal/repository/clickhouse"
	mongorepo "studiodesk/internal/repository/mongo"
	pgrepo "studiodesk/internal/repository/postgres"
	"studiodesk/internal/services/assistant"
	"studiodesk/internal/services/dashboard"
	"studiodesk/internal/services/support"
	"studiodesk/internal/services/translate"
	"studiodesk/internal/tools"
	"studiodesk/pkg/clickhouse"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
	"studiodesk/pkg/templates"
)

const connectTimeout = 15 * time.Second

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure connects MongoDB and every enabled optional store
func (c *Container) MustInitInfrastructure() {
	ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
	defer cancel()

	var err error

	c.Log.Info("Connecting to MongoDB...")
	c.Mongo, err = mongoclient.NewClient(ctx, c.Config.Mongo)
	if err != nil {
		c.Log.Fatalf("failed to connect mongodb: %v", err)
	}
	specs := append(
		mongoclient.StudioIndexes(c.Mongo.Database()),
		mongoclient.MemoryIndexes(c.Mongo.MemoryDatabase(), c.Config.Memory.MaxAge)...,
	)
	if err := mongoclient.EnsureIndexes(ctx, specs...); err != nil {
		c.Log.Fatalf("failed to ensure mongodb indexes: %v", err)
	}
	c.Log.Infow("✓ MongoDB connected", "database", c.Config.Mongo.Database)

	if c.Config.Memory.Backend == "postgres" {
		c.Log.Info("Connecting to PostgreSQL...")
		c.PG, err = pgclient.NewClient(ctx, c.Config.Postgres)
		if err != nil {
			c.Log.Fatalf("failed to connect postgres: %v", err)
		}
		c.Log.Info("✓ PostgreSQL connected")
	}

	if c.Config.ClickHouse.Enabled {
		c.Log.Info("Connecting to ClickHouse...")
		c.CH, err = chclient.NewClient(ctx, c.Config.ClickHouse)
		if err != nil {
			c.Log.Fatalf("failed to connect clickhouse: %v", err)
		}
		c.Log.Info("✓ ClickHouse connected")
	}

	if c.Config.Redis.Enabled {
		c.Log.Info("Connecting to Redis...")
		c.Redis, err = redisclient.NewClient(ctx, c.Config.Redis)
		if err != nil {
			c.Log.Fatalf("failed to connect redis: %v", err)
		}
		c.Log.Info("✓ Redis connected")
	}
}

// ========================================
// Phase 3: Domain Layer - Repositories
// ========================================

// MustInitRepositories initializes all domain repositories
func (c *Container) MustInitRepositories() {
	db := c.Mongo.Database()
	c.Repos.Clients = mongorepo.NewClientRepository(db)
	c.Repos.Courses = mongorepo.NewCourseRepository(db)
	c.Repos.Classes = mongorepo.NewClassRepository(db)
	c.Repos.Orders = mongorepo.NewOrderRepository(db)
	c.Repos.Payments = mongorepo.NewPaymentRepository(db)
	c.Repos.Attendance = mongorepo.NewAttendanceRepository(db)

	c.Repos.Memory = c.provideMemoryRepository()

	if c.CH != nil {
		repo := chrepo.NewAIUsageRepository(c.CH.Conn())
		ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			c.Log.Fatalf("failed to prepare ai_usage table: %v", err)
		}
		c.Repos.AIUsage = repo
	}

	c.Log.Infow("✓ Repositories initialized", "memory_backend", c.Config.Memory.Backend)
}

func (c *Container) provideMemoryRepository() memory.Repository {
	if c.Config.Memory.Backend != "postgres" {
		return mongorepo.NewMemoryRepository(c.Mongo.MemoryDatabase())
	}

	repo := pgrepo.NewMemoryRepository(c.PG.DB())
	ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		c.Log.Fatalf("failed to prepare memory table: %v", err)
	}
	return repo
}

// ========================================
// Phase 4: External Adapters
// ========================================

// MustInitAdapters initializes Kafka and the language model provider
func (c *Container) MustInitAdapters() {
	if c.Config.Kafka.Enabled {
		c.Adapters.KafkaProducer = kafka.NewProducer(kafka.ProducerConfig{Brokers: c.Config.Kafka.Brokers})
		c.Adapters.Publisher = events.NewKafkaPublisher(c.Adapters.KafkaProducer, c.Log)
		c.Log.Infow("✓ Kafka producer initialized", "brokers", c.Config.Kafka.Brokers)

		if c.Repos.AIUsage != nil {
			c.Adapters.AIUsageConsumer = kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers: c.Config.Kafka.Brokers,
				GroupID: c.Config.Kafka.GroupID + "-ai-usage",
				Topic:   kafka.TopicAIUsage,
			})
		}
	} else {
		c.Adapters.Publisher = events.NoopPublisher{}
		c.Log.Info("Kafka disabled, events are dropped")
	}

	provider, err := ai.NewChatProvider(c.Context, c.Config.AI)
	if err != nil {
		c.Log.Fatalf("failed to create AI provider: %v", err)
	}
	c.Adapters.ChatProvider = provider
	c.Log.Infow("✓ AI provider initialized", "provider", provider.Name(), "max_rpm", c.Config.AI.MaxRPM)
}

// ========================================
// Phase 5: Application Services
// ========================================

// MustInitServices initializes the query services, memory and translation
func (c *Container) MustInitServices() {
	c.Services.Support = support.NewService(support.Deps{
		Clients:   c.Repos.Clients,
		Courses:   c.Repos.Courses,
		Classes:   c.Repos.Classes,
		Orders:    c.Repos.Orders,
		Payments:  c.Repos.Payments,
		Publisher: c.Adapters.Publisher,
	}, c.Log)

	c.Services.Dashboard = dashboard.NewService(dashboard.Deps{
		Clients:    c.Repos.Clients,
		Courses:    c.Repos.Courses,
		Classes:    c.Repos.Classes,
		Orders:     c.Repos.Orders,
		Payments:   c.Repos.Payments,
		Attendance: c.Repos.Attendance,
	}, c.Log)

	c.Services.Memory = memory.NewService(c.Repos.Memory, memory.ServiceConfig{
		Retention: memory.Retention{
			MaxPerSession: c.Config.Memory.MaxPerSession,
			MaxAge:        c.Config.Memory.MaxAge,
		},
		RecentLimit:     c.Config.Memory.RecentLimit,
		Tracker:         c.ErrorTracker,
		OnAppendFailure: metrics.MemoryAppendFailures.Inc,
	})

	c.Services.Translator = translate.NewLLMTranslator(
		c.Adapters.ChatProvider,
		c.Config.AI.TranslationModelName(),
		templates.Get(),
		c.Log,
	)

	c.Log.Info("✓ Services initialized")
}

// ========================================
// Phase 6: Business Logic
// ========================================

// MustInitBusiness builds the tool catalogue, the agents and the assistant
func (c *Container) MustInitBusiness() {
	if err := templates.Get().MustHave(templates.Required()...); err != nil {
		c.Log.Fatalf("prompt templates incomplete: %v", err)
	}

	var err error

	c.Business.ToolRegistry, err = tools.NewCatalog(tools.Deps{
		Support:   c.Services.Support,
		Dashboard: c.Services.Dashboard,
		Log:       c.Log,
	})
	if err != nil {
		c.Log.Fatalf("failed to register tools: %v", err)
	}

	c.Business.AgentRegistry, err = agents.NewDefaultRegistry(c.Business.ToolRegistry)
	if err != nil {
		c.Log.Fatalf("failed to register agents: %v", err)
	}

	c.Business.Model = ai.ModelFor(c.Config.AI)
	c.Business.Executor = agents.NewExecutor(
		c.Adapters.ChatProvider,
		c.Business.ToolRegistry,
		c.Business.AgentRegistry,
		templates.Get(),
		c.Adapters.Publisher,
		agents.ExecutorConfig{
			Model:         c.Business.Model,
			Temperature:   float64(c.Config.AI.Temperature),
			MaxIterations: c.Config.AI.MaxIterations,
		},
		c.Log,
	)

	c.Services.Assistant = assistant.NewService(assistant.Deps{
		Runner:     c.Business.Executor,
		Memory:     c.Services.Memory,
		Translator: c.Services.Translator,
		Publisher:  c.Adapters.Publisher,
	}, c.Log)

	c.Log.Infow("✓ Agents initialized", "model", c.Business.Model, "metrics", c.GetMetrics())
}

// ========================================
// Phase 7: Application Layer
// ========================================

// MustInitApplication builds the health handler, the metrics collectors and the HTTP server
func (c *Container) MustInitApplication() {
	c.Application.HealthHandler = health.New(c.Log, c.Config.App.Name, c.Config.App.Version, c.healthChecks()...)

	metrics.Register()
	if err := metrics.RegisterStudioCollector(c.provideStudioCollector()); err != nil {
		c.Log.Warnw("Studio collector not registered", "error", err)
	}

	// Interfaces stay untyped nil when Redis is off so the middleware can detect it
	var (
		cache   middleware.ResponseStore
		limiter middleware.TokenBucket
	)
	if c.Redis != nil {
		cache = c.Redis
		limiter = c.Redis
	}

	c.Application.HTTPServer = api.NewServer(api.ServerConfig{
		HTTP:      c.Config.HTTP,
		RateLimit: c.Config.RateLimit,
		CacheTTL:  c.Config.Cache.DashboardTTL,
	}, api.Deps{
		Assistant: c.Services.Assistant,
		Support:   c.Services.Support,
		Dashboard: c.Services.Dashboard,
		Health:    c.Application.HealthHandler,
		Cache:     cache,
		Limiter:   limiter,
	}, c.Log)

	c.Log.Infow("✓ HTTP server configured", "addr", c.Config.HTTP.Addr(), "redis", c.Redis != nil)
}

// MustInitMCP builds the Model Context Protocol server over the catalogue and the assistant
func (c *Container) MustInitMCP() {
	c.Application.MCPServer = mcpserver.NewServer(c.Business.ToolRegistry, mcpserver.Options{
		Name:      c.Config.App.Name,
		Version:   c.Config.App.Version,
		Assistant: c.Services.Assistant,
		Log:       c.Log,
	})
}

func (c *Container) healthChecks() []health.Check {
	checks := []health.Check{
		{Name: "mongodb", Required: true, Ping: c.Mongo.Health},
	}
	if c.PG != nil {
		checks = append(checks, health.Check{Name: "postgres", Ping: c.PG.Health})
	}
	if c.Redis != nil {
		checks = append(checks, health.Check{Name: "redis", Ping: c.Redis.Health})
	}
	if c.CH != nil {
		checks = append(checks, health.Check{Name: "clickhouse", Ping: c.CH.Health})
	}
	return checks
}

func (c *Container) provideStudioCollector() *metrics.StudioCollector {
	dash := c.Services.Dashboard
	snapshot := func(ctx context.Context) (metrics.StudioSnapshot, error) {
		counts, err := dash.ClientCounts(ctx)
		if err != nil {
			return metrics.StudioSnapshot{}, err
		}
		outstanding, err := dash.OutstandingPayments(ctx)
		if err != nil {
			return metrics.StudioSnapshot{}, err
		}
		return metrics.StudioSnapshot{
			ActiveClients:       counts.Active,
			InactiveClients:     counts.Inactive,
			OutstandingPayments: outstanding,
		}, nil
	}

	var batchStats func() clickhouse.BatchWriterStats
	if c.Repos.AIUsage != nil {
		batchStats = c.Repos.AIUsage.Stats
	}
	return metrics.NewStudioCollector(c.Log, snapshot, batchStats)
}

// provideErrorTracker picks Sentry when configured, else a no-op tracker
func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(sentry.Options{
		DSN:         cfg.ErrorTracking.SentryDSN,
		Environment: cfg.ErrorTracking.Environment,
		Release:     cfg.App.Name + "@" + cfg.App.Version,
		SampleRate:  cfg.ErrorTracking.SampleRate,
	})
	if err != nil {
		log.Warnw("Failed to initialize Sentry, falling back to no-op tracker", "error", err)
		return errnoop.New()
	}

	log.Infow("✓ Sentry error tracking initialized", "environment", cfg.ErrorTracking.Environment)
	return tracker
}
