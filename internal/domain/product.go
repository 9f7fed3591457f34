package domain

// Resolution sources, from most to least authoritative.
const (
	SourceAI      = "ai"
	SourceCatalog = "catalog"
	SourceScout   = "scout"
	SourceDemo    = "demo"
)

// CO2Unknown marks a missing carbon figure. A real zero-impact reading
// stays 0; -1 always means "no data".
const CO2Unknown = -1.0

// Alternative is a suggested swap for a less sustainable product.
type Alternative struct {
	ProductName string `json:"product_name"`
	Reasoning   string `json:"reasoning"`
}

// CanonicalProduct is the reconciled output of the resolution pipeline,
// independent of which upstream source(s) contributed to it.
type CanonicalProduct struct {
	ProductName string `json:"productName"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`

	EcoScore           float64 `json:"ecoScore"`
	PackagingScore     float64 `json:"packagingScore"`
	CarbonScore        float64 `json:"carbonScore"`
	IngredientScore    float64 `json:"ingredientScore"`
	CertificationScore float64 `json:"certificationScore"`
	HealthScore        float64 `json:"healthScore"`

	Recyclable     bool          `json:"recyclable"`
	CO2Impact      float64       `json:"co2Impact"` // kg CO2e per 100g, CO2Unknown when missing
	Certifications []string      `json:"certifications"`
	EcoDescription string        `json:"ecoDescription"`
	Alternatives   []Alternative `json:"alternatives"`

	ImageURL   string  `json:"imageUrl,omitempty"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// CatalogEnrichment is the catalog-derived subset merged into an AI base
// record. It is always optional; a nil enrichment leaves the base record
// on fixed default sub-scores.
type CatalogEnrichment struct {
	ProductName string
	Brand       string
	Category    string

	EcoScore           float64
	PackagingScore     float64
	CarbonScore        float64
	IngredientScore    float64
	CertificationScore float64
	HealthScore        float64

	Recyclable     bool
	CO2Impact      float64
	Certifications []string
	Description    string
	ImageURL       string
	Alternatives   []Alternative
}

// ResolveInput identifies the product to resolve. Exactly one of Barcode,
// ProductName or Image is expected to be meaningful; an image, when
// present, is preferred.
type ResolveInput struct {
	Barcode     string
	ProductName string
	Image       []byte
	ImageMIME   string
	FastMode    bool
}

// Query returns the text query used by the AI and catalog tiers.
func (in ResolveInput) Query() string {
	if in.Barcode != "" {
		return in.Barcode
	}
	return in.ProductName
}

// ClampScore forces a score into [0,100]. Boundary values pass through
// unchanged.
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
