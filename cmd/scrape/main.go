package main

import (
	"context"
	"log"
	"os"

	"github.com/raushankrgupta/flyer-price-scraper/config"
	"github.com/raushankrgupta/flyer-price-scraper/pipeline"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup finishes before os.Exit
func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}
	// nothing touches the network before this passes
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		return 1
	}

	ctx := context.Background()
	sinks, err := pipeline.OpenSinks(ctx, cfg)
	if err != nil {
		log.Printf("Failed to open storage: %v", err)
		return 1
	}
	defer sinks.Close(context.Background())

	job, err := pipeline.NewJob(ctx, cfg, sinks.Multi)
	if err != nil {
		log.Printf("Failed to start pipeline: %v", err)
		return 1
	}
	defer job.Close()

	report, err := job.Execute(ctx)
	if err != nil {
		log.Printf("Run failed: %v", err)
		return 1
	}
	log.Printf("Saved %d products to %s", report.TotalProducts(), cfg.Storage.SnapshotPath)
	return 0
}
