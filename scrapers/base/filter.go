package base

import (
	"strings"

	"github.com/raushankrgupta/flyer-price-scraper/models"
)

// imageExtensions are the formats the vision model accepts
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ImageRules holds the size and shape limits that separate flyer pages from page chrome
type ImageRules struct {
	MinDimension float64
	MaxAspect    float64
	MinAspect    float64
}

// DefaultImageRules are the values the heuristics were tuned with
var DefaultImageRules = ImageRules{
	MinDimension: 500,
	MaxAspect:    4,
	MinAspect:    0.2,
}

// LargeEnough reports whether any known side reaches the minimum dimension
func (r ImageRules) LargeEnough(img models.CandidateImage) bool {
	return img.NaturalWidth >= r.MinDimension ||
		img.NaturalHeight >= r.MinDimension ||
		img.RenderedWidth >= r.MinDimension ||
		img.RenderedHeight >= r.MinDimension
}

// ExtremeAspect reports whether the image is banner-shaped. Natural size is
// preferred; the rendered box is used when the browser could not decode it.
// An image with no usable size counts as extreme.
func (r ImageRules) ExtremeAspect(img models.CandidateImage) bool {
	w, h := img.NaturalWidth, img.NaturalHeight
	if w <= 0 || h <= 0 {
		w, h = img.RenderedWidth, img.RenderedHeight
	}
	if w <= 0 || h <= 0 {
		return true
	}
	aspect := w / h
	return aspect > r.MaxAspect || aspect < r.MinAspect
}

// HasImageExtension reports whether the URL names a supported image format
func HasImageExtension(url string) bool {
	return ContainsAny(url, imageExtensions)
}

// ContainsAny reports whether s contains any of terms, ignoring case
func ContainsAny(s string, terms []string) bool {
	lower := strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
