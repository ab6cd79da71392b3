package storage

import (
	"context"
	"errors"
	"log"

	"github.com/raushankrgupta/flyer-price-scraper/models"
)

// ErrNotFound is returned when no snapshot exists for the requested date
var ErrNotFound = errors.New("snapshot not found")

// Sink persists a finished snapshot
type Sink interface {
	Save(ctx context.Context, snapshot *models.DailySnapshot) error
}

// Reader serves stored snapshots to the API
type Reader interface {
	Latest(ctx context.Context) (*models.DailySnapshot, error)
	ByDate(ctx context.Context, date string) (*models.DailySnapshot, error)
}

// MultiSink writes to the primary sink and then to every optional one.
// Only a primary failure is returned; optional failures are logged.
type MultiSink struct {
	Primary  Sink
	Optional []Sink
}

func (m *MultiSink) Save(ctx context.Context, snapshot *models.DailySnapshot) error {
	if err := m.Primary.Save(ctx, snapshot); err != nil {
		return err
	}
	for _, s := range m.Optional {
		if err := s.Save(ctx, snapshot); err != nil {
			log.Printf("[Storage] optional sink %T failed: %v", s, err)
		}
	}
	return nil
}
