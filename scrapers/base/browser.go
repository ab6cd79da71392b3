package base

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raushankrgupta/flyer-price-scraper/models"
)

// UserAgent is sent by every engine so listing sites see an ordinary desktop browser
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Browser is the DOM surface the locators need. It keeps one current page,
// the same way a single headless tab is reused across stores.
type Browser interface {
	// Load navigates to url and waits for the page to settle
	Load(ctx context.Context, url string) error
	// Images returns every <img> on the current page
	Images(ctx context.Context) ([]models.CandidateImage, error)
	// Links returns the href of every anchor matching the CSS selector
	Links(ctx context.Context, selector string) ([]string, error)
	Close() error
}

// Options configures a Browser engine
type Options struct {
	Engine            string // chromedp, selenium or http
	ChromeDriverPath  string
	SettleDelay       time.Duration
	NavigationTimeout time.Duration
}

// NewBrowser starts the engine named in opts
func NewBrowser(opts Options) (Browser, error) {
	switch opts.Engine {
	case "", "chromedp":
		return NewChromeBrowser(opts)
	case "selenium":
		return NewSeleniumBrowser(opts)
	case "http":
		return NewStaticBrowser(opts), nil
	default:
		return nil, fmt.Errorf("unsupported browser engine %q", opts.Engine)
	}
}

// imagesScript reports every image with its intrinsic and on-screen size
const imagesScript = `JSON.stringify(Array.from(document.querySelectorAll("img")).map(function (el) {
	var r = el.getBoundingClientRect();
	return {
		src: el.getAttribute("src") || "",
		dataSrc: el.getAttribute("data-src") || "",
		naturalWidth: el.naturalWidth || 0,
		naturalHeight: el.naturalHeight || 0,
		renderedWidth: r.width || 0,
		renderedHeight: r.height || 0
	};
}))`

func linksScript(selector string) string {
	quoted, _ := json.Marshal(selector)
	return fmt.Sprintf(`JSON.stringify(Array.from(document.querySelectorAll(%s)).map(function (a) {
	return a.getAttribute("href") || "";
}))`, quoted)
}

type scriptImage struct {
	Src            string  `json:"src"`
	DataSrc        string  `json:"dataSrc"`
	NaturalWidth   float64 `json:"naturalWidth"`
	NaturalHeight  float64 `json:"naturalHeight"`
	RenderedWidth  float64 `json:"renderedWidth"`
	RenderedHeight float64 `json:"renderedHeight"`
}

func decodeImages(raw, pageURL string) ([]models.CandidateImage, error) {
	var found []scriptImage
	if err := json.Unmarshal([]byte(raw), &found); err != nil {
		return nil, fmt.Errorf("decode image list: %w", err)
	}
	images := make([]models.CandidateImage, 0, len(found))
	for _, f := range found {
		images = append(images, models.CandidateImage{
			Src:            f.Src,
			DataSrc:        f.DataSrc,
			NaturalWidth:   f.NaturalWidth,
			NaturalHeight:  f.NaturalHeight,
			RenderedWidth:  f.RenderedWidth,
			RenderedHeight: f.RenderedHeight,
			PageURL:        pageURL,
		})
	}
	return images, nil
}

func decodeLinks(raw string) ([]string, error) {
	var links []string
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil, fmt.Errorf("decode link list: %w", err)
	}
	return links, nil
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
