package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/raushankrgupta/flyer-price-scraper/config"
	"github.com/raushankrgupta/flyer-price-scraper/extractor"
	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/raushankrgupta/flyer-price-scraper/pipeline"
	"github.com/raushankrgupta/flyer-price-scraper/scrapers"
	"github.com/raushankrgupta/flyer-price-scraper/scrapers/base"
	"github.com/raushankrgupta/flyer-price-scraper/utils"
)

const textProbe = "こんにちは。1+1は？数字だけ答えてください。"

func main() {
	textOnly := flag.Bool("text", false, "send a text-only probe to Gemini")
	storeName := flag.String("store", "", "run the image locator for one configured store")
	extract := flag.Bool("extract", false, "with -store, also fetch and extract the first image")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	if !*textOnly && *storeName == "" {
		flag.Usage()
		return
	}

	var gemini *utils.GeminiClient
	if *textOnly || *extract {
		gemini, err = utils.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer gemini.Close()
	}

	if *textOnly {
		fmt.Printf("Model: %s\n", cfg.Gemini.Model)
		start := time.Now()
		text, err := gemini.Generate(ctx, textProbe, "", nil)
		if err != nil {
			log.Printf("Text probe failed (rate limited: %v): %v", extractor.IsRateLimit(err), err)
		} else {
			fmt.Printf("Response (%s): %s\n", time.Since(start).Round(time.Millisecond), text)
		}
	}

	if *storeName == "" {
		return
	}

	store, ok := findStore(cfg.Stores, *storeName)
	if !ok {
		log.Fatalf("Store %q is not configured", *storeName)
	}

	browser, err := base.NewBrowser(pipeline.BrowserOptions(cfg))
	if err != nil {
		log.Fatalf("Failed to start browser: %v", err)
	}
	defer browser.Close()

	fmt.Printf("Testing store: %s (%s)\n", store.Name, store.Family)
	urls := scrapers.NewRegistry(browser, pipeline.ImageRules(cfg)).Locate(ctx, store)
	fmt.Printf("Found %d images\n", len(urls))
	for i, u := range urls {
		fmt.Printf("  [%d] %s\n", i+1, u)
	}

	if !*extract || len(urls) == 0 {
		return
	}

	img, err := pipeline.NewFetcher(cfg).Fetch(ctx, urls[0])
	if err != nil {
		log.Fatalf("Download failed: %v", err)
	}
	fmt.Printf("Downloaded %dKB (%s)\n", img.Size/1024, img.ContentType)
	if err := utils.Admit(img, cfg.Thresholds.MinImageBytes); err != nil {
		log.Fatalf("Not admitted: %v", err)
	}

	normalized, err := pipeline.NewNormalizer(cfg).Normalize(img)
	if err != nil {
		log.Fatalf("Normalize failed: %v", err)
	}
	fmt.Printf("Normalized to %dx%d (resized: %v)\n", normalized.Width, normalized.Height, normalized.Resized)

	client := extractor.NewClient(gemini, cfg.Pipeline.MaxRetries, cfg.Pipeline.RetryWait)
	text, err := client.Extract(ctx, extractor.BuildPrompt(time.Now().Year()), normalized.MIMEType, normalized.Data)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	products, ok := extractor.ParseProducts(text)
	if !ok {
		fmt.Printf("Could not parse response:\n%s\n", text)
		return
	}
	b, _ := json.MarshalIndent(products, "", "  ")
	fmt.Printf("Products: %s\n", string(b))
}

func findStore(stores []models.StoreTarget, name string) (models.StoreTarget, bool) {
	for _, s := range stores {
		if s.Name == name {
			return s, true
		}
	}
	return models.StoreTarget{}, false
}
