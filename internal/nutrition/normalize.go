package nutrition

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// A shapeMatcher inspects a raw provider payload and, if it recognizes
// the top-level shape, extracts normalized records. Matchers are tried in
// priority order; an unrecognized payload normalizes to no records rather
// than an error.
type shapeMatcher func(raw json.RawMessage) ([]FoodRecord, bool)

var matchers = []shapeMatcher{
	matchFoodsEnvelope,
	matchProductsList,
}

// Normalize converts a raw provider response body into canonical records.
func Normalize(raw []byte) []FoodRecord {
	for _, match := range matchers {
		if records, ok := match(raw); ok {
			return records
		}
	}
	return []FoodRecord{}
}

// matchFoodsEnvelope handles the nested envelope used by FatSecret:
// {"foods": {"food": [...]}}. A single result arrives as a bare object
// instead of a one-element array.
func matchFoodsEnvelope(raw json.RawMessage) ([]FoodRecord, bool) {
	var envelope struct {
		Foods *struct {
			Food json.RawMessage `json:"food"`
		} `json:"foods"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Foods == nil {
		return nil, false
	}

	type fatsecretFood struct {
		FoodID      string `json:"food_id"`
		FoodName    string `json:"food_name"`
		BrandName   string `json:"brand_name"`
		Description string `json:"food_description"`
	}

	var foods []fatsecretFood
	if err := json.Unmarshal(envelope.Foods.Food, &foods); err != nil {
		var single fatsecretFood
		if err := json.Unmarshal(envelope.Foods.Food, &single); err != nil {
			return []FoodRecord{}, true
		}
		foods = []fatsecretFood{single}
	}

	records := make([]FoodRecord, 0, len(foods))
	for _, f := range foods {
		if f.FoodName == "" {
			continue
		}
		records = append(records, FoodRecord{
			Name:      f.FoodName,
			Brand:     f.BrandName,
			UPC:       f.FoodID,
			Source:    "fatsecret",
			Nutrients: parseNutrientSummary(f.Description),
		})
	}
	return records, true
}

// matchProductsList handles the flat list used by OpenFoodFacts:
// {"products": [...]} with a free-form nutriments map whose values may be
// numbers or strings.
func matchProductsList(raw json.RawMessage) ([]FoodRecord, bool) {
	var envelope struct {
		Products []struct {
			ProductName string                     `json:"product_name"`
			Brands      string                     `json:"brands"`
			Code        string                     `json:"code"`
			Nutriments  map[string]json.RawMessage `json:"nutriments"`
		} `json:"products"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Products == nil {
		return nil, false
	}

	records := make([]FoodRecord, 0, len(envelope.Products))
	for _, p := range envelope.Products {
		if p.ProductName == "" && p.Code == "" {
			continue
		}

		var nutrients map[string]float64
		for key, value := range p.Nutriments {
			n, ok := looseFloat(value)
			if !ok {
				continue
			}
			if nutrients == nil {
				nutrients = make(map[string]float64)
			}
			nutrients[key] = n
		}

		records = append(records, FoodRecord{
			Name:      p.ProductName,
			Brand:     p.Brands,
			UPC:       p.Code,
			Source:    "openfoodfacts",
			Nutrients: nutrients,
		})
	}
	return records, true
}

// looseFloat accepts a JSON number or a numeric string.
func looseFloat(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

var nutrientSummaryRe = regexp.MustCompile(`(?i)(calories|fat|carbs|protein):\s*([0-9.]+)`)

// parseNutrientSummary extracts nutrient values from FatSecret's textual
// food_description, e.g. "Per 100g - Calories: 52kcal | Fat: 0.17g".
func parseNutrientSummary(description string) map[string]float64 {
	matches := nutrientSummaryRe.FindAllStringSubmatch(description, -1)
	if len(matches) == 0 {
		return nil
	}

	nutrients := make(map[string]float64, len(matches))
	for _, m := range matches {
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		nutrients[strings.ToLower(m[1])] = value
	}
	return nutrients
}
