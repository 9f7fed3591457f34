package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/ecolens/backend/internal/domain"
)

// Base values and bonuses for the transparent scoring heuristics. These
// are a documented contract with the UI, not tunables.
const (
	ingredientBase      = 50.0
	veganBonus          = 20.0
	vegetarianBonus     = 10.0
	palmOilFreeBonus    = 10.0
	certificationBase   = 50.0
	organicBonus        = 25.0
	fairTradeBonus      = 15.0
	packagingBase       = 40.0
	recyclablePackBonus = 35.0
	carbonDefault       = 55.0
	maxCertifications   = 6
)

// GradeToScore maps a catalog letter grade (eco or nutrition) to a 0-100
// score. Unrecognized grades, including "unknown" and "not-applicable",
// map to the neutral 50.
func GradeToScore(grade string) float64 {
	switch strings.ToLower(strings.TrimSpace(grade)) {
	case "a":
		return 90
	case "b":
		return 75
	case "c":
		return 60
	case "d":
		return 40
	case "e":
		return 20
	default:
		return 50
	}
}

// MapToEnrichment normalizes a raw catalog record into the enrichment
// shape the resolver merges into an AI base record. Returns nil when
// there is no catalog match.
func MapToEnrichment(raw *domain.RawCatalogRecord) *domain.CatalogEnrichment {
	if raw == nil {
		return nil
	}

	name := productName(raw)
	brand := brandName(raw)
	recyclable := strings.Contains(strings.ToLower(raw.Packaging), "recycl")
	eco := ecoScore(raw)
	co2, co2Known := raw.CO2PerHundredGrams()

	e := &domain.CatalogEnrichment{
		ProductName:        name,
		Brand:              brand,
		Category:           categoryName(raw),
		EcoScore:           eco,
		PackagingScore:     packagingScore(recyclable),
		CarbonScore:        carbonScore(co2, co2Known),
		IngredientScore:    ingredientScore(raw.IngredientsAnalysisTags),
		CertificationScore: certificationScore(labels(raw)),
		HealthScore:        GradeToScore(raw.NutriScoreGrade),
		Recyclable:         recyclable,
		CO2Impact:          domain.CO2Unknown,
		Certifications:     certifications(raw.LabelsTags),
		ImageURL:           raw.ImageURL,
	}
	if co2Known {
		e.CO2Impact = co2
	}

	e.Description = describe(name, brand, eco, recyclable)
	return e
}

// ecoScore prefers the catalog's own numeric score, falling back to the
// letter grade table.
func ecoScore(raw *domain.RawCatalogRecord) float64 {
	if raw.EcoScore != nil {
		return domain.ClampScore(*raw.EcoScore)
	}
	return GradeToScore(raw.EcoScoreGrade)
}

// ingredientScore rewards vegan, vegetarian and palm-oil-free analysis
// tags. Vegan and vegetarian bonuses stack.
func ingredientScore(tags []string) float64 {
	score := ingredientBase
	if hasTag(tags, "vegan") {
		score += veganBonus
	}
	if hasTag(tags, "vegetarian") {
		score += vegetarianBonus
	}
	if hasTag(tags, "palm-oil-free") {
		score += palmOilFreeBonus
	}
	return domain.ClampScore(score)
}

// certificationScore rewards organic/bio and fair-trade labels
func certificationScore(labels []string) float64 {
	score := certificationBase
	organic := false
	fairTrade := false
	for _, l := range labels {
		ll := strings.ToLower(l)
		if strings.Contains(ll, "organic") || strings.Contains(ll, "bio") {
			organic = true
		}
		if strings.Contains(ll, "fair-trade") || strings.Contains(ll, "fair trade") || strings.Contains(ll, "fairtrade") {
			fairTrade = true
		}
	}
	if organic {
		score += organicBonus
	}
	if fairTrade {
		score += fairTradeBonus
	}
	return domain.ClampScore(score)
}

func packagingScore(recyclable bool) float64 {
	score := packagingBase
	if recyclable {
		score += recyclablePackBonus
	}
	return domain.ClampScore(score)
}

// carbonScore applies a linear inverse penalty, saturating at 10 kg
// CO2e/100g and above.
func carbonScore(co2 float64, known bool) float64 {
	if !known {
		return carbonDefault
	}
	return domain.ClampScore(100 - math.Min(100, co2*10))
}

func productName(raw *domain.RawCatalogRecord) string {
	if raw.ProductName != "" {
		return raw.ProductName
	}
	if raw.GenericName != "" {
		return raw.GenericName
	}
	return "Unknown product"
}

func brandName(raw *domain.RawCatalogRecord) string {
	if len(raw.BrandsTags) > 0 {
		return stripNamespace(raw.BrandsTags[0])
	}
	if s := firstSegment(raw.Brands); s != "" {
		return s
	}
	return "Unknown brand"
}

func categoryName(raw *domain.RawCatalogRecord) string {
	if len(raw.CategoriesTags) > 0 {
		return stripNamespace(raw.CategoriesTags[0])
	}
	if s := firstSegment(raw.Categories); s != "" {
		return s
	}
	return "general"
}

// labels returns label values for scoring, preferring the tag list over
// the free-text field.
func labels(raw *domain.RawCatalogRecord) []string {
	if len(raw.LabelsTags) > 0 {
		out := make([]string, 0, len(raw.LabelsTags))
		for _, t := range raw.LabelsTags {
			out = append(out, stripNamespace(t))
		}
		return out
	}
	var out []string
	for _, s := range strings.Split(raw.Labels, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// certifications keeps the first maxCertifications label tags with
// namespace prefixes stripped.
func certifications(tags []string) []string {
	out := make([]string, 0, maxCertifications)
	for _, t := range tags {
		if len(out) == maxCertifications {
			break
		}
		out = append(out, stripNamespace(t))
	}
	return out
}

// hasTag reports whether the namespaced tag list contains value
// (e.g. "en:vegan" matches "vegan").
func hasTag(tags []string, value string) bool {
	for _, t := range tags {
		if stripNamespace(strings.ToLower(t)) == value {
			return true
		}
	}
	return false
}

// stripNamespace removes language prefixes like "en:" from catalog tags
func stripNamespace(tag string) string {
	if idx := strings.Index(tag, ":"); idx >= 0 {
		return tag[idx+1:]
	}
	return tag
}

// firstSegment returns the first comma-separated segment, trimmed
func firstSegment(s string) string {
	if idx := strings.Index(s, ","); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func describe(name, brand string, ecoScore float64, recyclable bool) string {
	packaging := "does not appear"
	if recyclable {
		packaging = "appears"
	}
	return fmt.Sprintf("%s by %s has a catalog eco score of %.0f and its packaging %s to be recyclable.",
		name, brand, ecoScore, packaging)
}
