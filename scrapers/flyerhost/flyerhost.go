package flyerhost

import (
	"context"
	"fmt"
	"log"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/raushankrgupta/flyer-price-scraper/scrapers/base"
)

// flyerLinkSelector matches the thumbnails that open a flyer's detail page
const flyerLinkSelector = `a[href*="/flyers/"]`

var (
	// contentMarkers appear in the path of images served from the flyer CDN
	contentMarkers = []string{"chirashi", "flyer", "image"}
	excludedTerms  = []string{"logo", "icon", "avatar"}
	// relaxedExcludedTerms apply when falling back to the listing page
	relaxedExcludedTerms = []string{"logo", "icon", "avatar", "svg"}
)

// Locator handles sites that keep full-resolution flyer pages one hop
// behind the store's listing page
type Locator struct {
	browser base.Browser
	rules   base.ImageRules
}

func NewLocator(browser base.Browser, rules base.ImageRules) *Locator {
	return &Locator{browser: browser, rules: rules}
}

func (l *Locator) Family() models.SiteFamily {
	return models.FlyerHosting
}

func (l *Locator) FindFlyerImages(ctx context.Context, store models.StoreTarget) ([]string, error) {
	if err := l.browser.Load(ctx, store.URL); err != nil {
		return nil, fmt.Errorf("load listing page: %w", err)
	}

	urls, navigated := l.fromDetailPage(ctx, store)
	if len(urls) > 0 {
		return urls, nil
	}

	log.Printf("[Locator] %s: no flyer pages found behind a detail link, scanning listing page", store.Name)
	if navigated {
		if err := l.browser.Load(ctx, store.URL); err != nil {
			return nil, fmt.Errorf("reload listing page: %w", err)
		}
	}
	images, err := l.browser.Images(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return l.accept(images, l.relaxedMatch), nil
}

// fromDetailPage follows the first flyer link and collects its pages. It reports
// whether the browser left the listing page, so the caller knows to reload it.
func (l *Locator) fromDetailPage(ctx context.Context, store models.StoreTarget) ([]string, bool) {
	links, err := l.browser.Links(ctx, flyerLinkSelector)
	if err != nil {
		log.Printf("[Locator] %s: flyer link query failed: %v", store.Name, err)
		return nil, false
	}

	var detailURL string
	for _, href := range links {
		if abs, err := base.ResolveURL(store.URL, href); err == nil {
			detailURL = abs
			break
		}
	}
	if detailURL == "" {
		return nil, false
	}

	if err := l.browser.Load(ctx, detailURL); err != nil {
		log.Printf("[Locator] %s: flyer detail page failed: %v", store.Name, err)
		return nil, true
	}
	images, err := l.browser.Images(ctx)
	if err != nil {
		log.Printf("[Locator] %s: detail page image query failed: %v", store.Name, err)
		return nil, true
	}
	return l.accept(images, l.strictMatch), true
}

func (l *Locator) accept(images []models.CandidateImage, match func(string) bool) []string {
	var urls []string
	for _, img := range images {
		if img.Src == "" || !match(img.Src) || !l.rules.LargeEnough(img) {
			continue
		}
		abs, err := base.ResolveURL(img.PageURL, img.Src)
		if err != nil {
			continue
		}
		urls = append(urls, abs)
	}
	return base.Dedupe(urls)
}

func (l *Locator) strictMatch(src string) bool {
	return base.ContainsAny(src, contentMarkers) &&
		base.HasImageExtension(src) &&
		!base.ContainsAny(src, excludedTerms)
}

func (l *Locator) relaxedMatch(src string) bool {
	return base.HasImageExtension(src) && !base.ContainsAny(src, relaxedExcludedTerms)
}
