package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/raushankrgupta/flyer-price-scraper/config"
	"github.com/raushankrgupta/flyer-price-scraper/extractor"
	"github.com/raushankrgupta/flyer-price-scraper/scrapers"
	"github.com/raushankrgupta/flyer-price-scraper/scrapers/base"
	"github.com/raushankrgupta/flyer-price-scraper/storage"
	"github.com/raushankrgupta/flyer-price-scraper/utils"
)

// Job is a fully wired run: browser, model client and sinks
type Job struct {
	Runner *Runner
	Sink   storage.Sink
	Mailer *utils.Mailer
	cfg    *config.Config

	closers []func() error
}

// ImageRules converts the configured thresholds for the locators
func ImageRules(cfg *config.Config) base.ImageRules {
	return base.ImageRules{
		MinDimension: cfg.Thresholds.MinDimension,
		MaxAspect:    cfg.Thresholds.MaxAspect,
		MinAspect:    cfg.Thresholds.MinAspect,
	}
}

// BrowserOptions converts the configured browser settings
func BrowserOptions(cfg *config.Config) base.Options {
	return base.Options{
		Engine:            cfg.Browser.Engine,
		ChromeDriverPath:  cfg.Browser.ChromeDriverPath,
		SettleDelay:       cfg.Browser.SettleDelay,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
	}
}

// NewFetcher builds the image fetcher with the configured redirect and size caps
func NewFetcher(cfg *config.Config) *utils.Fetcher {
	fetcher := utils.NewFetcher(cfg.Thresholds.MaxRedirects, cfg.Pipeline.RequestTimeout)
	fetcher.MaxBytes = int64(cfg.Thresholds.MaxImageBytes)
	return fetcher
}

// NewNormalizer builds the image normalizer from the configured thresholds
func NewNormalizer(cfg *config.Config) utils.Normalizer {
	return utils.Normalizer{
		MaxWidth:  cfg.Thresholds.MaxImageWidth,
		Quality:   cfg.Thresholds.JPEGQuality,
		MaxPixels: cfg.Thresholds.MaxPixels,
	}
}

// NewJob validates cfg and opens every collaborator. Call Close when done.
func NewJob(ctx context.Context, cfg *config.Config, sink storage.Sink) (*Job, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	job := &Job{Sink: sink, cfg: cfg}

	browser, err := base.NewBrowser(BrowserOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}
	job.closers = append(job.closers, browser.Close)

	gemini, err := utils.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		job.Close()
		return nil, err
	}
	job.closers = append(job.closers, gemini.Close)

	registry := scrapers.NewRegistry(browser, ImageRules(cfg))
	fetcher := NewFetcher(cfg)
	normalizer := NewNormalizer(cfg)
	client := extractor.NewClient(gemini, cfg.Pipeline.MaxRetries, cfg.Pipeline.RetryWait)

	job.Runner = NewRunner(registry, fetcher, normalizer, client, Options{
		MaxImagesPerStore: cfg.Pipeline.MaxImagesPerStore,
		MinImageBytes:     cfg.Thresholds.MinImageBytes,
		ImageDelay:        cfg.Pipeline.ImageDelay,
		StoreDelay:        cfg.Pipeline.StoreDelay,
		QuotaPause:        cfg.Pipeline.QuotaPause,
	})

	if cfg.Report.SendGridAPIKey != "" && cfg.Report.Email != "" {
		job.Mailer = utils.NewMailer(cfg.Report.SendGridAPIKey)
	}
	return job, nil
}

// Execute runs every configured store, persists the snapshot and sends the report.
// Only a primary persistence failure is returned.
func (j *Job) Execute(ctx context.Context) (*RunReport, error) {
	snapshot, report := j.Runner.Run(ctx, j.cfg.Stores)

	if err := j.Sink.Save(ctx, snapshot); err != nil {
		return report, fmt.Errorf("save snapshot: %w", err)
	}

	log.Printf("[Pipeline] report:\n%s", report)
	if j.Mailer != nil {
		subject := fmt.Sprintf("Flyer prices %s: %d products", report.Date, report.TotalProducts())
		if err := j.Mailer.SendEmail("", j.cfg.Report.Email, subject, report.String(), ""); err != nil {
			log.Printf("[Pipeline] report email failed: %v", err)
		}
	}
	return report, nil
}

// Close releases the browser and model client
func (j *Job) Close() {
	for i := len(j.closers) - 1; i >= 0; i-- {
		if err := j.closers[i](); err != nil {
			log.Printf("[Pipeline] close: %v", err)
		}
	}
	j.closers = nil
}

// Sinks is everything OpenSinks connected. Mongo and Archive are nil when
// not configured.
type Sinks struct {
	Multi   *storage.MultiSink
	Mongo   *storage.MongoStore
	Archive *storage.S3Archive
}

// Close disconnects Mongo when it was opened
func (s *Sinks) Close(ctx context.Context) {
	if s.Mongo != nil {
		if err := s.Mongo.Close(ctx); err != nil {
			log.Printf("[Storage] closing mongo: %v", err)
		}
	}
}

// OpenSinks builds the file sink plus Mongo and S3 when configured. A Mongo
// connection failure is fatal; an S3 setup failure only disables the archive.
func OpenSinks(ctx context.Context, cfg *config.Config) (*Sinks, error) {
	sinks := &Sinks{Multi: &storage.MultiSink{Primary: storage.NewFileSink(cfg.Storage.SnapshotPath)}}

	if cfg.Storage.MongoURI != "" {
		store, err := storage.ConnectMongo(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
		if err != nil {
			return nil, err
		}
		sinks.Mongo = store
		sinks.Multi.Optional = append(sinks.Multi.Optional, store)
	}

	if cfg.Storage.S3Bucket != "" {
		archive, err := storage.NewS3Archive(ctx, cfg.Storage.AWSRegion, cfg.Storage.S3Bucket)
		if err != nil {
			log.Printf("[Storage] S3 archive disabled: %v", err)
		} else {
			sinks.Archive = archive
			sinks.Multi.Optional = append(sinks.Multi.Optional, archive)
		}
	}
	return sinks, nil
}
