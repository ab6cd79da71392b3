package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/raushankrgupta/flyer-price-scraper/extractor"
	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/raushankrgupta/flyer-price-scraper/utils"
)

// StoreLocator finds flyer image URLs for a store. Failures yield an empty list.
type StoreLocator interface {
	Locate(ctx context.Context, store models.StoreTarget) []string
}

type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*models.DownloadedImage, error)
}

type ImageNormalizer interface {
	Normalize(img *models.DownloadedImage) (*models.NormalizedImage, error)
}

type Extractor interface {
	Extract(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
}

// Options holds the run limits and pacing
type Options struct {
	MaxImagesPerStore int
	MinImageBytes     int
	ImageDelay        time.Duration // after each successful model call, except a store's last image
	StoreDelay        time.Duration // after locating each store
	QuotaPause        time.Duration // once, before the run's first extraction
}

// Runner walks every store sequentially and builds the daily snapshot.
// Nothing that fails inside a store or an image escapes Run.
type Runner struct {
	Locator    StoreLocator
	Fetcher    ImageFetcher
	Normalizer ImageNormalizer
	Extractor  Extractor
	Options    Options

	Sleep func(time.Duration)
	Now   func() time.Time
}

func NewRunner(locator StoreLocator, fetcher ImageFetcher, normalizer ImageNormalizer, ext Extractor, opts Options) *Runner {
	return &Runner{
		Locator:    locator,
		Fetcher:    fetcher,
		Normalizer: normalizer,
		Extractor:  ext,
		Options:    opts,
		Sleep:      time.Sleep,
		Now:        time.Now,
	}
}

// Run handles stores one at a time in list order: locate, then extract every
// kept image, then move on. QuotaPause is taken once, before the first image
// of the run reaches the model.
func (r *Runner) Run(ctx context.Context, stores []models.StoreTarget) (*models.DailySnapshot, *RunReport) {
	started := r.Now()
	// local calendar date; stores publish on Japan time and the job runs there
	report := &RunReport{Date: started.Format(models.DateLayout), Started: started}

	prompt := extractor.BuildPrompt(started.Year())
	snapshot := &models.DailySnapshot{Date: report.Date, Stores: []models.StoreSnapshot{}}
	paused := false
	for i, store := range stores {
		log.Printf("[Pipeline] [%d/%d] locating flyer images for %s", i+1, len(stores), store.Name)
		found := r.locate(ctx, store)
		r.Sleep(r.Options.StoreDelay)

		if len(found) > 0 && !paused && r.Options.QuotaPause > 0 {
			log.Printf("[Pipeline] waiting %s for the API quota to recover", r.Options.QuotaPause)
			r.Sleep(r.Options.QuotaPause)
			paused = true
		}

		stats := StoreReport{StoreName: store.Name, Found: len(found)}
		products := r.processStore(ctx, store, found, prompt, &stats)
		stats.Products = len(products)

		snapshot.Stores = append(snapshot.Stores, models.NewStoreSnapshot(store.Name, products, r.Now()))
		report.Stores = append(report.Stores, stats)
		log.Printf("[Pipeline] %s: found=%d extracted=%d skipped=%d products=%d",
			store.Name, stats.Found, stats.Extracted, stats.Skipped(), stats.Products)
	}

	report.Duration = r.Now().Sub(started)
	log.Printf("[Pipeline] run finished: %d stores, %d products", len(snapshot.Stores), snapshot.ProductCount())
	return snapshot, report
}

func (r *Runner) locate(ctx context.Context, store models.StoreTarget) (urls []string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Pipeline] %s: locating panicked: %v", store.Name, rec)
			urls = nil
		}
	}()
	return r.Locator.Locate(ctx, store)
}

// processStore extracts products from up to MaxImagesPerStore images
func (r *Runner) processStore(ctx context.Context, store models.StoreTarget, urls []string, prompt string, stats *StoreReport) (products []models.ProductRecord) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Pipeline] %s: store failed: %v", store.Name, rec)
			products = nil
		}
	}()

	if len(urls) == 0 {
		log.Printf("[Pipeline] %s: no images, skipping", store.Name)
		return nil
	}

	if limit := r.Options.MaxImagesPerStore; limit > 0 && len(urls) > limit {
		log.Printf("[Pipeline] %s: analyzing only %d of %d images", store.Name, limit, len(urls))
		stats.Truncated = len(urls) - limit
		urls = urls[:limit]
	}

	for idx, url := range urls {
		log.Printf("[Pipeline] %s [%d/%d] %s", store.Name, idx+1, len(urls), url)
		found, called := r.processImage(ctx, url, prompt, stats)
		products = append(products, found...)

		if called && idx < len(urls)-1 {
			r.Sleep(r.Options.ImageDelay)
		}
	}
	return products
}

// processImage runs one image through fetch, admission, normalization,
// extraction and parsing. called reports whether the model answered.
func (r *Runner) processImage(ctx context.Context, url, prompt string, stats *StoreReport) (products []models.ProductRecord, called bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Pipeline] skip %s: unexpected failure: %v", url, rec)
			stats.Panicked++
			products = nil
		}
	}()

	img, err := r.Fetcher.Fetch(ctx, url)
	if err != nil {
		log.Printf("[Pipeline] skip (download failed): %v", err)
		stats.FetchFailed++
		return nil, false
	}
	stats.Fetched++

	if err := utils.Admit(img, r.Options.MinImageBytes); err != nil {
		log.Printf("[Pipeline] skip (%dKB, likely an icon or thumbnail): %v", img.Size/1024, err)
		stats.TooSmall++
		return nil, false
	}

	normalized, err := r.Normalizer.Normalize(img)
	if err != nil {
		log.Printf("[Pipeline] skip (normalize failed): %v", err)
		stats.NormalizeFailed++
		return nil, false
	}
	if normalized.Resized {
		log.Printf("[Pipeline] resized %dKB -> %dKB", img.Size/1024, len(normalized.Data)/1024)
	}

	text, err := r.Extractor.Extract(ctx, prompt, normalized.MIMEType, normalized.Data)
	if err != nil {
		if errors.Is(err, extractor.ErrRateLimited) {
			log.Printf("[Pipeline] skip (quota exhausted): %v", err)
		} else {
			log.Printf("[Pipeline] skip (API error): %v", err)
		}
		stats.ExtractFailed++
		return nil, false
	}

	products, ok := extractor.ParseProducts(text)
	if !ok {
		stats.ParseSkipped++
		return nil, true
	}
	stats.Extracted++
	log.Printf("[Pipeline] -> %d products extracted", len(products))
	return products, true
}

