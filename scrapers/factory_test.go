package scrapers

import (
	"context"
	"errors"
	"testing"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/raushankrgupta/flyer-price-scraper/scrapers/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLocator struct {
	family models.SiteFamily
	urls   []string
	err    error
	panics bool
}

func (s stubLocator) Family() models.SiteFamily { return s.family }

func (s stubLocator) FindFlyerImages(context.Context, models.StoreTarget) ([]string, error) {
	if s.panics {
		panic("browser crashed")
	}
	return s.urls, s.err
}

func TestRegistry_GetLocator(t *testing.T) {
	r := NewRegistry(nil, base.DefaultImageRules)

	l, err := r.GetLocator(models.StoreTarget{Name: "a", Family: models.FlyerHosting})
	require.NoError(t, err)
	assert.Equal(t, models.FlyerHosting, l.Family())

	l, err = r.GetLocator(models.StoreTarget{Name: "b", Family: models.ListingAggregator})
	require.NoError(t, err)
	assert.Equal(t, models.ListingAggregator, l.Family())

	_, err = r.GetLocator(models.StoreTarget{Name: "c", Family: "unknown"})
	assert.Error(t, err)
}

func TestRegistry_Locate(t *testing.T) {
	store := models.StoreTarget{Name: "s", URL: "https://example.com", Family: models.FlyerHosting}

	tests := []struct {
		name    string
		locator stubLocator
		want    []string
	}{
		{"success", stubLocator{urls: []string{"https://example.com/a.jpg"}}, []string{"https://example.com/a.jpg"}},
		{"error yields empty", stubLocator{err: errors.New("boom")}, nil},
		{"panic yields empty", stubLocator{panics: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(nil, base.DefaultImageRules)
			tt.locator.family = models.FlyerHosting
			r.Register(tt.locator)
			assert.Equal(t, tt.want, r.Locate(context.Background(), store))
		})
	}
}
