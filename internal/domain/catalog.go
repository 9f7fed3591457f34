package domain

import (
	"strconv"
	"strings"
)

// RawCatalogRecord is the Open Food Facts product shape, fetched per lookup
// and never persisted by the pipeline. Nutriments is kept dynamic because
// the catalog mixes numbers and strings under hundreds of keys.
type RawCatalogRecord struct {
	Code                    string         `json:"code"`
	ProductName             string         `json:"product_name"`
	GenericName             string         `json:"generic_name"`
	Brands                  string         `json:"brands"`
	BrandsTags              []string       `json:"brands_tags"`
	Categories              string         `json:"categories"`
	CategoriesTags          []string       `json:"categories_tags"`
	EcoScoreGrade           string         `json:"ecoscore_grade"` // a-e, "not-applicable", "unknown"
	EcoScore                *float64       `json:"ecoscore_score"`
	NutriScoreGrade         string         `json:"nutriscore_grade"`
	IngredientsAnalysisTags []string       `json:"ingredients_analysis_tags"`
	Labels                  string         `json:"labels"`
	LabelsTags              []string       `json:"labels_tags"`
	Packaging               string         `json:"packaging"`
	Nutriments              map[string]any `json:"nutriments"`
	ImageURL                string         `json:"image_url"`
}

// CO2PerHundredGrams extracts the carbon footprint figure (kg CO2e/100g)
// from the nutriments map. The second return reports availability so a
// genuine zero reading is distinguishable from missing data.
func (r *RawCatalogRecord) CO2PerHundredGrams() (float64, bool) {
	if v, ok := nutrimentFloat(r.Nutriments, "carbon-footprint_100g"); ok {
		return v, true
	}
	return nutrimentFloat(r.Nutriments, "carbon-footprint-from-known-ingredients_100g")
}

// nutrimentFloat coerces a nutriments value to float64. The catalog
// serves some figures as strings.
func nutrimentFloat(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// CatalogProductResponse is the fetch-by-barcode envelope; Status 1 means
// a match was found.
type CatalogProductResponse struct {
	Status  int               `json:"status"`
	Code    string            `json:"code"`
	Product *RawCatalogRecord `json:"product"`
}

// CatalogSearchResponse is the search-by-name envelope.
type CatalogSearchResponse struct {
	Products []RawCatalogRecord `json:"products"`
	Count    int                `json:"count"`
}
