package base

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/flyer-price-scraper/models"
)

// StaticBrowser loads pages over plain HTTP and queries them with goquery.
// It runs no JavaScript, so natural sizes are unknown and the width/height
// attributes stand in for the rendered size.
type StaticBrowser struct {
	Client  *http.Client
	doc     *goquery.Document
	pageURL string
}

// NewStaticBrowser creates a StaticBrowser with the navigation timeout applied per request
func NewStaticBrowser(opts Options) *StaticBrowser {
	timeout := opts.NavigationTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &StaticBrowser{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				ForceAttemptHTTP2:     false,
				TLSNextProto:          make(map[string]func(string, *tls.Conn) http.RoundTripper),
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

func (b *StaticBrowser) Load(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")

	res, err := b.Client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status code error: %d %s", res.StatusCode, res.Status)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return err
	}
	b.doc = doc
	b.pageURL = res.Request.URL.String()
	return nil
}

func (b *StaticBrowser) Images(ctx context.Context) ([]models.CandidateImage, error) {
	if b.doc == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	var images []models.CandidateImage
	b.doc.Find("img").Each(func(i int, s *goquery.Selection) {
		images = append(images, models.CandidateImage{
			Src:            s.AttrOr("src", ""),
			DataSrc:        s.AttrOr("data-src", ""),
			RenderedWidth:  parseDimension(s.AttrOr("width", "")),
			RenderedHeight: parseDimension(s.AttrOr("height", "")),
			PageURL:        b.pageURL,
		})
	})
	return images, nil
}

func (b *StaticBrowser) Links(ctx context.Context, selector string) ([]string, error) {
	if b.doc == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	var links []string
	b.doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		links = append(links, s.AttrOr("href", ""))
	})
	return links, nil
}

func (b *StaticBrowser) Close() error {
	b.Client.CloseIdleConnections()
	return nil
}

// parseDimension reads "800" or "800px"; anything else is unknown
func parseDimension(raw string) float64 {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
