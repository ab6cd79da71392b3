package models

// CandidateImage is an <img> found on a listing page together with whatever
// geometry the browser could report for it. Zero means unknown.
type CandidateImage struct {
	Src            string
	DataSrc        string // lazy-load source, if any
	NaturalWidth   float64
	NaturalHeight  float64
	RenderedWidth  float64
	RenderedHeight float64
	PageURL        string // page the element was found on
}

// URL returns the primary source, falling back to the lazy-load attribute
func (c CandidateImage) URL() string {
	if c.Src != "" {
		return c.Src
	}
	return c.DataSrc
}

// DownloadedImage holds the raw bytes of a fetched image
type DownloadedImage struct {
	URL         string
	Data        []byte
	ContentType string
	Size        int
}

// NormalizedImage is what gets sent to the vision model
type NormalizedImage struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
	Resized  bool
}
