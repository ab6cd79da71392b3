package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray .env or config.yaml is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("loads defaults", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("GEMINI_API_KEY", "test-key")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-key", cfg.Gemini.APIKey)
		assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
		assert.Equal(t, "chromedp", cfg.Browser.Engine)
		assert.Equal(t, 60*time.Second, cfg.Browser.NavigationTimeout)
		assert.Equal(t, 500.0, cfg.Thresholds.MinDimension)
		assert.Equal(t, 4.0, cfg.Thresholds.MaxAspect)
		assert.Equal(t, 0.2, cfg.Thresholds.MinAspect)
		assert.Equal(t, 50*1024, cfg.Thresholds.MinImageBytes)
		assert.Equal(t, 1024, cfg.Thresholds.MaxImageWidth)
		assert.Equal(t, 20<<20, cfg.Thresholds.MaxImageBytes)
		assert.Equal(t, 40_000_000, cfg.Thresholds.MaxPixels)
		assert.Equal(t, 60*time.Second, cfg.Pipeline.RequestTimeout)
		assert.Equal(t, 5, cfg.Thresholds.MaxRedirects)
		assert.Equal(t, 5, cfg.Pipeline.MaxImagesPerStore)
		assert.Equal(t, 8*time.Second, cfg.Pipeline.ImageDelay)
		assert.Equal(t, 60*time.Second, cfg.Pipeline.QuotaPause)
		assert.Equal(t, 90*time.Second, cfg.Pipeline.RetryWait)
		assert.Equal(t, 2, cfg.Pipeline.MaxRetries)
		assert.Equal(t, "data/daily_prices.json", cfg.Storage.SnapshotPath)
		assert.Equal(t, DefaultStores(), cfg.Stores)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("GEMINI_API_KEY", "test-key")
		t.Setenv("GEMINI_MODEL", "gemini-1.5-flash")
		t.Setenv("BROWSER_ENGINE", "http")
		t.Setenv("SNAPSHOT_PATH", "/tmp/out.json")
		t.Setenv("MAX_IMAGES_PER_STORE", "3")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
		assert.Equal(t, "http", cfg.Browser.Engine)
		assert.Equal(t, "/tmp/out.json", cfg.Storage.SnapshotPath)
		assert.Equal(t, 3, cfg.Pipeline.MaxImagesPerStore)
	})

	t.Run("reads stores and thresholds from config.yaml", func(t *testing.T) {
		dir := chdirTemp(t)
		t.Setenv("GEMINI_API_KEY", "test-key")
		yaml := `
thresholds:
  min_dimension: 640
pipeline:
  image_delay: 2s
stores:
  - name: テスト店
    url: https://example.com/stores/1
    family: listing-aggregator
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 640.0, cfg.Thresholds.MinDimension)
		assert.Equal(t, 4.0, cfg.Thresholds.MaxAspect)
		assert.Equal(t, 2*time.Second, cfg.Pipeline.ImageDelay)
		require.Len(t, cfg.Stores, 1)
		assert.Equal(t, models.StoreTarget{Name: "テスト店", URL: "https://example.com/stores/1", Family: models.ListingAggregator}, cfg.Stores[0])
	})
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		chdirTemp(t)
		t.Setenv("GEMINI_API_KEY", "test-key")
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	t.Run("missing api key is fatal", func(t *testing.T) {
		cfg := valid(t)
		cfg.Gemini.APIKey = ""
		assert.ErrorContains(t, cfg.Validate(), "GEMINI_API_KEY")
	})

	t.Run("unknown engine", func(t *testing.T) {
		cfg := valid(t)
		cfg.Browser.Engine = "phantomjs"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown site family", func(t *testing.T) {
		cfg := valid(t)
		cfg.Stores = []models.StoreTarget{{Name: "x", URL: "https://example.com", Family: "weekly-ads"}}
		assert.ErrorContains(t, cfg.Validate(), "unknown site family")
	})

	t.Run("non-positive threshold", func(t *testing.T) {
		cfg := valid(t)
		cfg.Thresholds.MinImageBytes = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("inverted aspect bounds", func(t *testing.T) {
		cfg := valid(t)
		cfg.Thresholds.MinAspect = 5
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero navigation timeout", func(t *testing.T) {
		cfg := valid(t)
		cfg.Browser.NavigationTimeout = 0
		assert.ErrorContains(t, cfg.Validate(), "navigation_timeout")
	})

	t.Run("negative request timeout", func(t *testing.T) {
		cfg := valid(t)
		cfg.Pipeline.RequestTimeout = -time.Second
		assert.ErrorContains(t, cfg.Validate(), "request_timeout")
	})

	t.Run("size cap below admission floor", func(t *testing.T) {
		cfg := valid(t)
		cfg.Thresholds.MaxImageBytes = 1024
		assert.ErrorContains(t, cfg.Validate(), "max_image_bytes")
	})
}
