package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/raushankrgupta/flyer-price-scraper/api"
	"github.com/raushankrgupta/flyer-price-scraper/config"
	"github.com/raushankrgupta/flyer-price-scraper/pipeline"
	"github.com/raushankrgupta/flyer-price-scraper/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	sinks, err := pipeline.OpenSinks(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer sinks.Close(context.Background())

	var reader storage.Reader = storage.NewFileSink(cfg.Storage.SnapshotPath)
	if sinks.Mongo != nil {
		reader = sinks.Mongo
	}

	run := func(ctx context.Context) error {
		job, err := pipeline.NewJob(ctx, cfg, sinks.Multi)
		if err != nil {
			return err
		}
		defer job.Close()
		_, err = job.Execute(ctx)
		return err
	}

	server := api.NewServer(reader, api.AuthConfig{
		JWTSecret:         cfg.Server.JWTSecret,
		AdminPasswordHash: cfg.Server.AdminPasswordHash,
	}, run)
	if sinks.Archive != nil {
		server.SetArchive(sinks.Archive)
	}

	port := cfg.Server.Port
	fmt.Printf("Server starting on port %s...\n", port)
	fmt.Printf("Usage: curl \"http://localhost:%s/snapshots/latest\"\n", port)
	if err := http.ListenAndServe(":"+port, server.Router()); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
