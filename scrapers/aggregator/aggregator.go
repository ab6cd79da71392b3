package aggregator

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/raushankrgupta/flyer-price-scraper/scrapers/base"
)

// excludedTerms filter out page chrome and ads that share the flyer CDN
var excludedTerms = []string{
	"logo", "icon", "avatar", "svg", "badge", "banner",
	"button", "arrow", "sprite", "emoji", "ad_",
	"advertisement", "campaign", "coupon", "stamp",
	"profile", "user", "thumb_small",
}

// Locator handles listing sites that render flyer pages inline on the store page
type Locator struct {
	browser base.Browser
	rules   base.ImageRules
}

func NewLocator(browser base.Browser, rules base.ImageRules) *Locator {
	return &Locator{browser: browser, rules: rules}
}

func (l *Locator) Family() models.SiteFamily {
	return models.ListingAggregator
}

func (l *Locator) FindFlyerImages(ctx context.Context, store models.StoreTarget) ([]string, error) {
	if err := l.browser.Load(ctx, store.URL); err != nil {
		return nil, fmt.Errorf("load store page: %w", err)
	}
	images, err := l.browser.Images(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	var urls []string
	for _, img := range images {
		src := img.URL()
		if src == "" || base.ContainsAny(src, excludedTerms) {
			continue
		}
		if !l.rules.LargeEnough(img) || l.rules.ExtremeAspect(img) {
			continue
		}
		pageURL := img.PageURL
		if pageURL == "" {
			pageURL = store.URL
		}
		abs, err := base.ResolveURL(pageURL, src)
		if err != nil {
			continue
		}
		urls = append(urls, abs)
	}
	return base.Dedupe(urls), nil
}
