package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/spf13/viper"
)

// Config holds everything a run needs. It is built once at startup and passed down.
type Config struct {
	Gemini     GeminiConfig         `mapstructure:"gemini"`
	Browser    BrowserConfig        `mapstructure:"browser"`
	Thresholds Thresholds           `mapstructure:"thresholds"`
	Pipeline   PipelineConfig       `mapstructure:"pipeline"`
	Storage    StorageConfig        `mapstructure:"storage"`
	Server     ServerConfig         `mapstructure:"server"`
	Report     ReportConfig         `mapstructure:"report"`
	Stores     []models.StoreTarget `mapstructure:"stores"`
}

// GeminiConfig holds the vision model credentials
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// BrowserConfig selects how listing pages are loaded
type BrowserConfig struct {
	Engine            string        `mapstructure:"engine"` // chromedp, selenium or http
	ChromeDriverPath  string        `mapstructure:"chromedriver_path"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
}

// Thresholds are the image heuristics. They were tuned against live sites and
// are expected to drift, hence configurable.
type Thresholds struct {
	MinDimension  float64 `mapstructure:"min_dimension"`
	MaxAspect     float64 `mapstructure:"max_aspect"`
	MinAspect     float64 `mapstructure:"min_aspect"`
	MinImageBytes int     `mapstructure:"min_image_bytes"`
	MaxImageWidth int     `mapstructure:"max_image_width"`
	MaxImageBytes int     `mapstructure:"max_image_bytes"`
	MaxPixels     int     `mapstructure:"max_pixels"`
	JPEGQuality   int     `mapstructure:"jpeg_quality"`
	MaxRedirects  int     `mapstructure:"max_redirects"`
}

// PipelineConfig holds run pacing and volume limits
type PipelineConfig struct {
	MaxImagesPerStore int           `mapstructure:"max_images_per_store"`
	ImageDelay        time.Duration `mapstructure:"image_delay"`
	StoreDelay        time.Duration `mapstructure:"store_delay"`
	QuotaPause        time.Duration `mapstructure:"quota_pause"`
	RetryWait         time.Duration `mapstructure:"retry_wait"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// StorageConfig holds snapshot persistence targets. Only SnapshotPath is required.
type StorageConfig struct {
	SnapshotPath  string `mapstructure:"snapshot_path"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	AWSRegion     string `mapstructure:"aws_region"`
}

// ServerConfig holds the admin API settings
type ServerConfig struct {
	Port              string `mapstructure:"port"`
	JWTSecret         string `mapstructure:"jwt_secret"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
}

// ReportConfig holds the optional run summary email settings
type ReportConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	Email          string `mapstructure:"email"`
}

var envBindings = map[string]string{
	"gemini.api_key":                "GEMINI_API_KEY",
	"gemini.model":                  "GEMINI_MODEL",
	"browser.engine":                "BROWSER_ENGINE",
	"browser.chromedriver_path":     "CHROMEDRIVER_PATH",
	"storage.snapshot_path":         "SNAPSHOT_PATH",
	"storage.mongo_uri":             "MONGO_URI",
	"storage.mongo_database":        "MONGO_DATABASE",
	"storage.s3_bucket":             "AWS_BUCKET_NAME",
	"storage.aws_region":            "AWS_REGION",
	"server.port":                   "PORT",
	"server.jwt_secret":             "JWT_SECRET",
	"server.admin_password_hash":    "ADMIN_PASSWORD_HASH",
	"report.sendgrid_api_key":       "SENDGRID_API_KEY",
	"report.email":                  "REPORT_EMAIL",
	"pipeline.max_images_per_store": "MAX_IMAGES_PER_STORE",
}

// Load reads .env, an optional config.yaml and the environment, in that order of precedence
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using config file or system environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if len(cfg.Stores) == 0 {
		cfg.Stores = DefaultStores()
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini.model", "gemini-2.0-flash")

	v.SetDefault("browser.engine", "chromedp")
	v.SetDefault("browser.chromedriver_path", "/usr/local/bin/chromedriver")
	v.SetDefault("browser.settle_delay", "3s")
	v.SetDefault("browser.navigation_timeout", "60s")

	v.SetDefault("thresholds.min_dimension", 500)
	v.SetDefault("thresholds.max_aspect", 4.0)
	v.SetDefault("thresholds.min_aspect", 0.2)
	v.SetDefault("thresholds.min_image_bytes", 50*1024)
	v.SetDefault("thresholds.max_image_width", 1024)
	v.SetDefault("thresholds.max_image_bytes", 20<<20)
	v.SetDefault("thresholds.max_pixels", 40_000_000)
	v.SetDefault("thresholds.jpeg_quality", 80)
	v.SetDefault("thresholds.max_redirects", 5)

	v.SetDefault("pipeline.max_images_per_store", 5)
	v.SetDefault("pipeline.image_delay", "8s")
	v.SetDefault("pipeline.store_delay", "2s")
	v.SetDefault("pipeline.quota_pause", "60s")
	v.SetDefault("pipeline.retry_wait", "90s")
	v.SetDefault("pipeline.max_retries", 2)
	v.SetDefault("pipeline.request_timeout", "60s")

	v.SetDefault("storage.snapshot_path", "data/daily_prices.json")
	v.SetDefault("storage.mongo_database", "flyers")
	v.SetDefault("storage.aws_region", "ap-northeast-1")

	v.SetDefault("server.port", "8080")
}

// Validate fails on anything that must stop a run before it touches the network
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	switch c.Browser.Engine {
	case "chromedp", "selenium", "http":
	default:
		return fmt.Errorf("unsupported browser engine %q", c.Browser.Engine)
	}

	t := c.Thresholds
	if t.MinDimension <= 0 || t.MaxAspect <= 0 || t.MinAspect <= 0 || t.MinImageBytes <= 0 ||
		t.MaxImageWidth <= 0 || t.MaxImageBytes <= 0 || t.MaxPixels <= 0 || t.JPEGQuality <= 0 || t.MaxRedirects <= 0 {
		return fmt.Errorf("thresholds must all be positive: %+v", t)
	}
	if t.MinAspect >= t.MaxAspect {
		return fmt.Errorf("min_aspect %.2f must be below max_aspect %.2f", t.MinAspect, t.MaxAspect)
	}
	if t.MaxImageBytes < t.MinImageBytes {
		return fmt.Errorf("max_image_bytes %d is below min_image_bytes %d", t.MaxImageBytes, t.MinImageBytes)
	}
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be positive")
	}
	if c.Pipeline.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.Pipeline.MaxImagesPerStore <= 0 {
		return fmt.Errorf("max_images_per_store must be positive")
	}
	if c.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.Storage.SnapshotPath == "" {
		return fmt.Errorf("snapshot_path is required")
	}

	for i, s := range c.Stores {
		if s.Name == "" || s.URL == "" {
			return fmt.Errorf("store %d: name and url are required", i)
		}
		if !s.Family.Valid() {
			return fmt.Errorf("store %q: unknown site family %q", s.Name, s.Family)
		}
	}
	return nil
}
