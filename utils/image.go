package utils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Admit rejects images smaller than minBytes. Tiny files are icons or placeholders.
func Admit(img *models.DownloadedImage, minBytes int) error {
	if img.Size < minBytes {
		return fmt.Errorf("%w: %d bytes < %d", ErrImageTooSmall, img.Size, minBytes)
	}
	return nil
}

// Normalizer shrinks wide images before they are sent to the vision model
type Normalizer struct {
	MaxWidth int
	Quality  int
	// MaxPixels bounds width*height before a full decode; zero means DefaultMaxPixels
	MaxPixels int
}

// DefaultMaxPixels is roughly a 5000x8000 flyer scan
const DefaultMaxPixels = 40_000_000

// Normalize scales images wider than MaxWidth down to MaxWidth and re-encodes
// them as JPEG. Narrower images are passed through untouched. The result is
// always tagged image/jpeg.
func (n Normalizer) Normalize(img *models.DownloadedImage) (*models.NormalizedImage, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	maxPixels := n.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	if cfg.Width <= n.MaxWidth {
		return &models.NormalizedImage{
			Data:     img.Data,
			MIMEType: "image/jpeg",
			Width:    cfg.Width,
			Height:   cfg.Height,
		}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	height := cfg.Height * n.MaxWidth / cfg.Width
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, n.MaxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return &models.NormalizedImage{
		Data:     buf.Bytes(),
		MIMEType: "image/jpeg",
		Width:    n.MaxWidth,
		Height:   height,
		Resized:  true,
	}, nil
}
