package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"golang.org/x/time/rate"
)

const (
	fetchUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultContentType  = "image/jpeg"
	defaultFetchTimeout = 60 * time.Second

	// DefaultMaxImageBytes caps a single download
	DefaultMaxImageBytes = 20 << 20
)

// Fetcher downloads flyer images. Requests to one host are paced by a shared limiter.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// NewFetcher builds a fetcher that follows at most maxRedirects redirects
func NewFetcher(maxRedirects int, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Fetcher{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, maxRedirects)
				}
				return nil
			},
		},
		MaxBytes: DefaultMaxImageBytes,
		limiters: map[string]*rate.Limiter{},
		perHost:  rate.Every(500 * time.Millisecond),
		burst:    2,
	}
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(f.perHost, f.burst)
		f.limiters[host] = l
	}
	return l
}

// Fetch downloads one image. Any redirect overflow or non-200 final status is an error.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) (*models.DownloadedImage, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid image url: %w", err)
	}
	if err := f.limiter(u.Host).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxImageBytes
	}
	if resp.ContentLength > limit {
		return nil, fmt.Errorf("%w: %d bytes declared, cap is %d", ErrImageTooLarge, resp.ContentLength, limit)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrImageTooLarge, limit)
	}

	log.Printf("[Fetcher] %s: %d bytes", imageURL, len(body))
	return &models.DownloadedImage{
		URL:         imageURL,
		Data:        body,
		ContentType: mediaType(resp.Header.Get("Content-Type")),
		Size:        len(body),
	}, nil
}

// mediaType strips parameters from a Content-Type header
func mediaType(header string) string {
	if header == "" {
		return defaultContentType
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		mt = strings.TrimSpace(strings.Split(header, ";")[0])
	}
	if mt == "" {
		return defaultContentType
	}
	return strings.ToLower(mt)
}
