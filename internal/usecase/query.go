package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
	specialCharsRegex   = regexp.MustCompile(`[#%+@!^*()=\[\]{}<>|\\~` + "`" + `]`)
	sizePatternRegex    = regexp.MustCompile(
		`(?i)\b\d+\.?\d*\s*(?:fl\s*oz|oz|ml|liters?|l|gallons?|gal|lbs?|pounds?|kg|grams?|g|ct|count|pk|pack|ea|each)\b`,
	)
)

// cleanSearchQuery strips retail noise from a product name before the
// catalog name search. Shop titles are noisy ("Choco Bites, Family Pack,
// 500 g") while the catalog indexes plain product names.
func cleanSearchQuery(name string) string {
	// Take only text before first comma (strip size/packaging info)
	if idx := strings.Index(name, ","); idx > 0 {
		name = name[:idx]
	}

	// Sanitize characters that break the catalog search endpoint
	name = strings.ReplaceAll(name, "&", " and ")
	name = specialCharsRegex.ReplaceAllString(name, " ")

	// Remove size/quantity patterns like "500 g", "1 l", "6 pack"
	name = sizePatternRegex.ReplaceAllString(name, " ")

	// Collapse whitespace
	name = multipleSpacesRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
