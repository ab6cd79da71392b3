package scrapers

import (
	"context"
	"fmt"
	"log"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/raushankrgupta/flyer-price-scraper/scrapers/aggregator"
	"github.com/raushankrgupta/flyer-price-scraper/scrapers/base"
	"github.com/raushankrgupta/flyer-price-scraper/scrapers/flyerhost"
)

// Registry maps each site family to its locator. All locators share one browser.
type Registry struct {
	locators map[models.SiteFamily]Locator
}

// NewRegistry registers a locator for every known site family
func NewRegistry(browser base.Browser, rules base.ImageRules) *Registry {
	r := &Registry{locators: map[models.SiteFamily]Locator{}}
	r.Register(flyerhost.NewLocator(browser, rules))
	r.Register(aggregator.NewLocator(browser, rules))
	return r
}

// Register adds or replaces the locator for l.Family()
func (r *Registry) Register(l Locator) {
	r.locators[l.Family()] = l
}

// GetLocator returns the locator for the store's site family
func (r *Registry) GetLocator(store models.StoreTarget) (Locator, error) {
	l, ok := r.locators[store.Family]
	if !ok {
		return nil, fmt.Errorf("no locator for site family %q (store %s)", store.Family, store.Name)
	}
	return l, nil
}

// Locate runs the store's locator. Any failure, including a panic inside the
// browser engine, is logged and yields an empty list so the run can continue.
func (r *Registry) Locate(ctx context.Context, store models.StoreTarget) (urls []string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Locator] %s: recovered from panic: %v", store.Name, rec)
			urls = nil
		}
	}()

	l, err := r.GetLocator(store)
	if err != nil {
		log.Printf("[Locator] %s: %v", store.Name, err)
		return nil
	}
	urls, err = l.FindFlyerImages(ctx, store)
	if err != nil {
		log.Printf("[Locator] %s: %v", store.Name, err)
		return nil
	}
	log.Printf("[Locator] %s: found %d candidate images", store.Name, len(urls))
	return urls
}
