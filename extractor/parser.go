package extractor

import (
	"encoding/json"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/raushankrgupta/flyer-price-scraper/models"
)

// TaxRate is the consumption tax applied to food in flyers
const TaxRate = 1.08

// rawProduct mirrors the model output loosely; every field may be missing or mistyped
type rawProduct struct {
	ProductName json.RawMessage `json:"productName"`
	Price       *struct {
		TaxExcl json.RawMessage `json:"taxExcl"`
		TaxIncl json.RawMessage `json:"taxIncl"`
	} `json:"price"`
	Unit      json.RawMessage `json:"unit"`
	Category  json.RawMessage `json:"category"`
	ValidFrom json.RawMessage `json:"validFrom"`
	ValidTo   json.RawMessage `json:"validTo"`
}

// ParseProducts pulls the JSON object out of free-form model text and returns
// the usable records. It never fails: malformed input yields no records and
// ok=false so callers can count the skip.
func ParseProducts(text string) (products []models.ProductRecord, ok bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		log.Printf("[Gemini] no JSON object in response")
		return nil, false
	}

	var envelope struct {
		Products json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &envelope); err != nil {
		log.Printf("[Gemini] invalid JSON in response: %v", err)
		return nil, false
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(envelope.Products, &raws); err != nil {
		// missing or not an array
		return nil, true
	}

	for _, item := range raws {
		var raw rawProduct
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		p, keep := normalize(raw)
		if !keep {
			continue
		}
		products = append(products, p)
	}
	return products, true
}

func normalize(raw rawProduct) (models.ProductRecord, bool) {
	p := models.ProductRecord{
		ProductName: asString(raw.ProductName),
		Unit:        asString(raw.Unit),
		Category:    models.ParseCategory(asString(raw.Category)),
		ValidFrom:   asOptionalString(raw.ValidFrom),
		ValidTo:     asOptionalString(raw.ValidTo),
	}
	var excl, incl *float64
	if raw.Price != nil {
		excl = asYen(raw.Price.TaxExcl)
		incl = asYen(raw.Price.TaxIncl)
	}

	// derive from the amount as sent, then round both
	switch {
	case excl == nil && incl == nil:
		return p, false
	case incl == nil:
		v := *excl * TaxRate
		incl = &v
	case excl == nil:
		v := *incl / TaxRate
		excl = &v
	}
	p.Price.TaxExcl = roundYen(*excl)
	p.Price.TaxIncl = roundYen(*incl)
	return p, true
}

func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	return string(raw)
}

func asOptionalString(raw json.RawMessage) *string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil
	}
	return &s
}

// asYen accepts a number or a numeric string such as "1,280円". Zero and
// negative amounts are treated as unreadable.
func asYen(raw json.RawMessage) *float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		s = strings.NewReplacer(",", "", "円", "", "¥", "", "￥", "", " ", "").Replace(s)
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	}
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func roundYen(f float64) *int {
	v := int(math.Round(f))
	return &v
}
