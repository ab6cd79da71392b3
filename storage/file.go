package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/raushankrgupta/flyer-price-scraper/models"
)

// FileSink keeps the latest snapshot at a fixed path, overwritten on every run
type FileSink struct {
	Path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

// Save writes to a temp file in the same directory and renames it into place,
// so readers never see a half-written snapshot
func (f *FileSink) Save(_ context.Context, snapshot *models.DailySnapshot) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".daily_prices-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	log.Printf("[Storage] saved %d stores to %s", len(snapshot.Stores), f.Path)
	return nil
}

// Latest reads the snapshot file
func (f *FileSink) Latest(_ context.Context) (*models.DailySnapshot, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var snapshot models.DailySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	return &snapshot, nil
}

// ByDate only finds the date currently held in the file
func (f *FileSink) ByDate(ctx context.Context, date string) (*models.DailySnapshot, error) {
	snapshot, err := f.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot.Date != date {
		return nil, ErrNotFound
	}
	return snapshot, nil
}
