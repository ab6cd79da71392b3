package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// StoreReport counts what happened to one store's images
type StoreReport struct {
	StoreName       string `json:"storeName"`
	Found           int    `json:"found"`
	Truncated       int    `json:"truncated"`
	Fetched         int    `json:"fetched"`
	FetchFailed     int    `json:"fetchFailed"`
	TooSmall        int    `json:"tooSmall"`
	NormalizeFailed int    `json:"normalizeFailed"`
	ExtractFailed   int    `json:"extractFailed"`
	ParseSkipped    int    `json:"parseSkipped"`
	Panicked        int    `json:"panicked"`
	Extracted       int    `json:"extracted"`
	Products        int    `json:"products"`
}

// Skipped is every image that was attempted but produced nothing
func (s StoreReport) Skipped() int {
	return s.FetchFailed + s.TooSmall + s.NormalizeFailed + s.ExtractFailed + s.ParseSkipped + s.Panicked
}

// RunReport summarizes one run for logs and the notification email
type RunReport struct {
	Date     string        `json:"date"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Stores   []StoreReport `json:"stores"`
}

// TotalProducts sums products across stores
func (r *RunReport) TotalProducts() int {
	total := 0
	for _, s := range r.Stores {
		total += s.Products
	}
	return total
}

// String renders a plain-text table, one line per store
func (r *RunReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Flyer run %s (%s)\n", r.Date, r.Duration.Round(time.Second))
	for _, s := range r.Stores {
		fmt.Fprintf(&sb, "%s: found=%d extracted=%d skipped=%d products=%d\n",
			s.StoreName, s.Found, s.Extracted, s.Skipped(), s.Products)
	}
	fmt.Fprintf(&sb, "Total products: %d\n", r.TotalProducts())
	return sb.String()
}
