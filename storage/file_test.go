package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(date string) *models.DailySnapshot {
	excl, incl := 198, 214
	return &models.DailySnapshot{
		Date: date,
		Stores: []models.StoreSnapshot{
			models.NewStoreSnapshot("ライフ", []models.ProductRecord{{
				ProductName: "キャベツ",
				Price:       models.Price{TaxExcl: &excl, TaxIncl: &incl},
				Unit:        "1玉",
				Category:    models.CategoryVegetable,
			}}, time.Date(2026, 2, 17, 9, 0, 0, 0, time.UTC)),
			models.NewStoreSnapshot("サミット", nil, time.Date(2026, 2, 17, 9, 5, 0, 0, time.UTC)),
		},
	}
}

func TestFileSink_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "daily_prices.json")
	sink := NewFileSink(path)
	ctx := context.Background()

	require.NoError(t, sink.Save(ctx, snapshot("2026-02-16")))
	require.NoError(t, sink.Save(ctx, snapshot("2026-02-17")))

	got, err := sink.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-17", got.Date)
	assert.Len(t, got.Stores, 2)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileSink_JSONShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_prices.json")
	require.NoError(t, NewFileSink(path).Save(context.Background(), snapshot("2026-02-17")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2026-02-17", doc["date"])

	stores := doc["stores"].([]any)
	first := stores[0].(map[string]any)
	assert.Equal(t, "ライフ", first["storeName"])
	assert.Equal(t, "2026-02-17T09:00:00Z", first["scrapedAt"])

	product := first["products"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"taxExcl": 198.0, "taxIncl": 214.0}, product["price"])
	assert.Equal(t, "野菜", product["category"])
	assert.Contains(t, product, "validFrom")
	assert.Nil(t, product["validFrom"])

	second := stores[1].(map[string]any)
	assert.Equal(t, []any{}, second["products"])
}

func TestFileSink_Missing(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "none.json"))

	_, err := sink.Latest(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileSink_ByDate(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "daily_prices.json"))
	ctx := context.Background()
	require.NoError(t, sink.Save(ctx, snapshot("2026-02-17")))

	got, err := sink.ByDate(ctx, "2026-02-17")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-17", got.Date)

	_, err = sink.ByDate(ctx, "2026-02-10")
	assert.True(t, errors.Is(err, ErrNotFound))
}

type recordingSink struct {
	err   error
	saved int
}

func (r *recordingSink) Save(context.Context, *models.DailySnapshot) error {
	r.saved++
	return r.err
}

func TestMultiSink(t *testing.T) {
	ctx := context.Background()

	primary := &recordingSink{}
	broken := &recordingSink{err: errors.New("mongo down")}
	archive := &recordingSink{}
	m := &MultiSink{Primary: primary, Optional: []Sink{broken, archive}}
	require.NoError(t, m.Save(ctx, snapshot("2026-02-17")))
	assert.Equal(t, 1, archive.saved)

	failing := &MultiSink{Primary: &recordingSink{err: errors.New("disk full")}, Optional: []Sink{archive}}
	assert.Error(t, failing.Save(ctx, snapshot("2026-02-17")))
	assert.Equal(t, 1, archive.saved)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "snapshots/2026-02-17.json", ObjectKey("2026-02-17"))
}
