package models

// SiteFamily tags a listing site by the structure its flyer pages follow
type SiteFamily string

const (
	// FlyerHosting sites keep full-resolution flyer pages behind a detail link
	FlyerHosting SiteFamily = "flyer-hosting"
	// ListingAggregator sites render flyer pages directly on the store page
	ListingAggregator SiteFamily = "listing-aggregator"
)

// Valid reports whether f is one of the known site families
func (f SiteFamily) Valid() bool {
	switch f {
	case FlyerHosting, ListingAggregator:
		return true
	}
	return false
}

// StoreTarget identifies a store to scrape
type StoreTarget struct {
	Name   string     `mapstructure:"name" json:"name"`
	URL    string     `mapstructure:"url" json:"url"`
	Family SiteFamily `mapstructure:"family" json:"family"`
}
