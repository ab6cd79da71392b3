package models

import "time"

// DateLayout is the calendar date format used across the snapshot
const DateLayout = "2006-01-02"

// StoreSnapshot holds every product extracted for one store in one run
type StoreSnapshot struct {
	StoreName string          `bson:"store_name" json:"storeName"`
	Products  []ProductRecord `bson:"products" json:"products"`
	ScrapedAt time.Time       `bson:"scraped_at" json:"scrapedAt"`
}

// DailySnapshot is the single artifact produced by a run
type DailySnapshot struct {
	Date   string          `bson:"date" json:"date"`
	Stores []StoreSnapshot `bson:"stores" json:"stores"`
}

// NewStoreSnapshot never returns a nil product list, so the JSON always carries an array
func NewStoreSnapshot(name string, products []ProductRecord, scrapedAt time.Time) StoreSnapshot {
	if products == nil {
		products = []ProductRecord{}
	}
	return StoreSnapshot{
		StoreName: name,
		Products:  products,
		ScrapedAt: scrapedAt,
	}
}

// ProductCount returns the number of products across all stores
func (d DailySnapshot) ProductCount() int {
	total := 0
	for _, s := range d.Stores {
		total += len(s.Products)
	}
	return total
}
