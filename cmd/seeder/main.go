// Command seeder fills the studio database with generated mock data.
package main

import (
	"context"
	"flag"
	"time"

	"studiodesk/internal/adapters/config"
	mongoclient "studiodesk/internal/adapters/mongo"
	mongorepo "studiodesk/internal/repository/mongo"
	"studiodesk/internal/seeds"
	"studiodesk/pkg/logger"
)

func main() {
	env := flag.String("env", "dev", "Data set size: dev, staging, test")
	dryRun := flag.Bool("dry-run", false, "Generate and report counts without writing")
	seed := flag.Int64("seed", 0, "Random seed; 0 draws one from the clock")
	flag.Parse()

	cfg, err := config.LoadForTools()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	counts, err := seeds.ProfileFor(*env)
	if err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	log.Infow("Starting seeder",
		"environment", *env,
		"dry_run", *dryRun,
		"seed", *seed,
		"database", cfg.Mongo.Database,
	)

	ds := seeds.NewGenerator(*seed, time.Now()).Generate(counts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var sink seeds.Sink
	if !*dryRun {
		client, err := mongoclient.NewClient(ctx, cfg.Mongo)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() { _ = client.Close(context.Background()) }()

		if err := mongoclient.EnsureIndexes(ctx, mongoclient.StudioIndexes(client.Database())...); err != nil {
			log.Fatalf("Failed to ensure indexes: %v", err)
		}
		sink = mongorepo.NewSeedWriter(client.Database())
	}

	written, err := seeds.New(sink, *dryRun, log).Seed(ctx, ds)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	for _, w := range written {
		log.Infow("Collection seeded", "collection", w.Collection, "count", w.Count)
	}
	log.Info("✅ Seeding completed")
}
