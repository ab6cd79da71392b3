package scrapers

import (
	"context"

	"github.com/raushankrgupta/flyer-price-scraper/models"
)

// Locator finds flyer page images for one site family
type Locator interface {
	// Family reports which site family the locator handles
	Family() models.SiteFamily
	// FindFlyerImages returns de-duplicated absolute image URLs for the store
	FindFlyerImages(ctx context.Context, store models.StoreTarget) ([]string, error)
}
