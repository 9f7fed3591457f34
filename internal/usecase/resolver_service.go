package usecase

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/ecolens/backend/internal/domain"
	"github.com/ecolens/backend/internal/infrastructure/catalog"
)

// Sub-score defaults applied when no catalog enrichment is available.
const (
	defaultEcoScore           = 55.0
	defaultPackagingScore     = 55.0
	defaultCarbonScore        = 55.0
	defaultIngredientScore    = 55.0
	defaultCertificationScore = 50.0
	defaultHealthScore        = 50.0
)

// scoutConfidence is reported when the scout result carries no usable
// confidence of its own.
const scoutConfidence = 0.5

// ResolverConfig holds tuning for the resolution pipeline
type ResolverConfig struct {
	// AITimeout bounds the primary and scout AI calls. Exceeding it is
	// fatal to that tier and cascades to the next one.
	AITimeout time.Duration

	// CatalogTimeout bounds the best-effort enrichment step. Exceeding
	// it only skips enrichment.
	CatalogTimeout time.Duration

	// MinConfidence optionally gates acceptance of an AI result. Zero
	// disables the gate: a syntactically valid AI result is trusted
	// regardless of its reported confidence.
	MinConfidence float64
}

// ResolverService drives the ordered multi-source lookup: AI first,
// catalog enrichment second, scout third, demo fourth. It owns all
// timeout policy and the merge rule between AI and catalog records.
type ResolverService struct {
	analyzer  domain.ProductAnalyzer
	catalog   domain.CatalogClient
	estimator SubScoreEstimator
	demo      *DemoCatalog

	aiTimeout      time.Duration
	catalogTimeout time.Duration
	minConfidence  float64
}

// NewResolverService creates a resolver with its dependencies. A nil
// estimator gets a randomized band estimator; config zeros get the
// standard timeouts.
func NewResolverService(
	analyzer domain.ProductAnalyzer,
	catalogClient domain.CatalogClient,
	estimator SubScoreEstimator,
	demo *DemoCatalog,
	config ResolverConfig,
) *ResolverService {
	if estimator == nil {
		estimator = NewBandEstimator(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	if demo == nil {
		demo = NewDemoCatalog(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	aiTimeout := config.AITimeout
	if aiTimeout <= 0 {
		aiTimeout = 6 * time.Second
	}
	catalogTimeout := config.CatalogTimeout
	if catalogTimeout <= 0 {
		catalogTimeout = 3 * time.Second
	}

	return &ResolverService{
		analyzer:       analyzer,
		catalog:        catalogClient,
		estimator:      estimator,
		demo:           demo,
		aiTimeout:      aiTimeout,
		catalogTimeout: catalogTimeout,
		minConfidence:  config.MinConfidence,
	}
}

// Resolve runs the full tiered lookup and always returns a usable
// record; total upstream failure degrades to the demo tier. Errors never
// escape to the caller.
func (s *ResolverService) Resolve(ctx context.Context, input domain.ResolveInput) *domain.CanonicalProduct {
	query := input.Query()

	analysis := s.primaryAnalysis(ctx, input)
	if analysis != nil && s.accept(analysis) {
		base := s.baseFromAnalysis(analysis)
		enrichment := s.enrich(ctx, input, base.ProductName)
		return mergeEnrichment(base, enrichment)
	}

	if product := s.scout(ctx, query); product != nil {
		return product
	}

	return s.demo.Generate(query)
}

// primaryAnalysis runs the first AI tier under its bounded wait. Any
// failure (transport, parse, timeout) collapses to nil and cascades.
func (s *ResolverService) primaryAnalysis(ctx context.Context, input domain.ResolveInput) *domain.AIAnalysis {
	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	var analysis *domain.AIAnalysis
	var err error
	if len(input.Image) > 0 {
		analysis, err = s.analyzer.AnalyzeImage(aiCtx, input.Image, input.ImageMIME, input.FastMode)
	} else {
		analysis, err = s.analyzer.AnalyzeText(aiCtx, input.Query())
	}
	if err != nil {
		log.Printf("[RESOLVE] Primary AI tier failed: %v", err)
		return nil
	}
	if analysis == nil {
		log.Printf("[RESOLVE] Primary AI tier produced no analysis")
	}
	return analysis
}

// accept applies the optional confidence gate. Disabled by default: the
// AI result is trusted whenever it is syntactically valid.
func (s *ResolverService) accept(analysis *domain.AIAnalysis) bool {
	if s.minConfidence <= 0 {
		return true
	}
	if analysis.Confidence < s.minConfidence {
		log.Printf("[RESOLVE] AI confidence %.2f below gate %.2f, cascading", analysis.Confidence, s.minConfidence)
		return false
	}
	return true
}

// baseFromAnalysis builds the AI-derived base record. Identity and
// overall score come from the AI; sub-scores start on defaults until
// enrichment replaces them.
func (s *ResolverService) baseFromAnalysis(analysis *domain.AIAnalysis) *domain.CanonicalProduct {
	ecoScore := defaultEcoScore
	if analysis.EcoScore != nil {
		ecoScore = domain.ClampScore(*analysis.EcoScore)
	}

	alternatives := analysis.Alternatives
	if alternatives == nil {
		alternatives = []domain.Alternative{}
	}

	return &domain.CanonicalProduct{
		ProductName:    analysis.ProductName,
		Brand:          analysis.Brand,
		Category:       analysis.Category,
		EcoScore:       ecoScore,
		EcoDescription: fmt.Sprintf("AI: %s. Confidence: %.2f", analysis.Reasoning, analysis.Confidence),
		Alternatives:   alternatives,
		Source:         domain.SourceAI,
		Confidence:     analysis.Confidence,
	}
}

// enrich attempts the best-effort catalog lookup under its own bounded
// wait. All errors are swallowed: enrichment never blocks or fails the
// overall call.
func (s *ResolverService) enrich(ctx context.Context, input domain.ResolveInput, aiName string) *domain.CatalogEnrichment {
	catCtx, cancel := context.WithTimeout(ctx, s.catalogTimeout)
	defer cancel()

	var raw *domain.RawCatalogRecord
	var err error

	if input.Barcode != "" {
		raw, err = s.catalog.GetProductByBarcode(catCtx, input.Barcode)
		if err != nil {
			log.Printf("[RESOLVE] Catalog barcode lookup skipped: %v", err)
			return nil
		}
	} else {
		name := aiName
		if name == "" {
			name = input.ProductName
		}
		results, serr := s.catalog.SearchProductsByName(catCtx, cleanSearchQuery(name))
		if serr != nil || len(results) == 0 {
			log.Printf("[RESOLVE] Catalog name search skipped: %v", serr)
			return nil
		}
		raw = &results[0]
	}

	return catalog.MapToEnrichment(raw)
}

// mergeEnrichment applies the field-level merge rule. The AI base is the
// identity and overall-score authority; the catalog only fills gaps and
// supplies the sub-scores the AI does not provide.
func mergeEnrichment(base *domain.CanonicalProduct, enrichment *domain.CatalogEnrichment) *domain.CanonicalProduct {
	if enrichment == nil {
		base.PackagingScore = defaultPackagingScore
		base.CarbonScore = defaultCarbonScore
		base.IngredientScore = defaultIngredientScore
		base.CertificationScore = defaultCertificationScore
		base.HealthScore = defaultHealthScore
		base.Recyclable = false
		base.CO2Impact = domain.CO2Unknown
		base.Certifications = []string{}
		return base
	}

	if base.ProductName == "" {
		base.ProductName = enrichment.ProductName
	}
	if base.Brand == "" {
		base.Brand = enrichment.Brand
	}
	if base.Category == "" {
		base.Category = enrichment.Category
	}

	// EcoScore stays the AI's even when the catalog disagrees.
	base.PackagingScore = enrichment.PackagingScore
	base.CarbonScore = enrichment.CarbonScore
	base.IngredientScore = enrichment.IngredientScore
	base.CertificationScore = enrichment.CertificationScore
	base.HealthScore = enrichment.HealthScore
	base.Recyclable = enrichment.Recyclable
	base.CO2Impact = enrichment.CO2Impact
	base.Certifications = enrichment.Certifications
	if base.Certifications == nil {
		base.Certifications = []string{}
	}
	base.ImageURL = enrichment.ImageURL
	base.EcoDescription = base.EcoDescription + "\n\nExtra info (catalog): " + enrichment.Description
	if len(base.Alternatives) == 0 && len(enrichment.Alternatives) > 0 {
		base.Alternatives = enrichment.Alternatives
	}
	base.Source = domain.SourceCatalog
	return base
}

// scout runs the secondary AI attempt and maps a success into the
// canonical shape with heuristic sub-scores. Returns nil when the tier
// fails, handing over to the demo backstop.
func (s *ResolverService) scout(ctx context.Context, query string) *domain.CanonicalProduct {
	scoutCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	analysis, err := s.analyzer.ScoutText(scoutCtx, query)
	if err != nil {
		log.Printf("[RESOLVE] Scout tier failed: %v", err)
		return nil
	}
	if analysis == nil {
		log.Printf("[RESOLVE] Scout tier produced no analysis")
		return nil
	}

	ecoScore := defaultEcoScore
	if analysis.EcoScore != nil {
		ecoScore = domain.ClampScore(*analysis.EcoScore)
	}
	confidence := analysis.Confidence
	if confidence <= 0 {
		confidence = scoutConfidence
	}
	alternatives := analysis.Alternatives
	if alternatives == nil {
		alternatives = []domain.Alternative{}
	}

	scores := s.estimator.Estimate(analysis.ProductName)

	return &domain.CanonicalProduct{
		ProductName:        analysis.ProductName,
		Brand:              analysis.Brand,
		Category:           analysis.Category,
		EcoScore:           ecoScore,
		PackagingScore:     domain.ClampScore(scores.Packaging),
		CarbonScore:        domain.ClampScore(scores.Carbon),
		IngredientScore:    domain.ClampScore(scores.Ingredient),
		CertificationScore: domain.ClampScore(scores.Certification),
		HealthScore:        domain.ClampScore(scores.Health),
		Recyclable:         false,
		CO2Impact:          domain.CO2Unknown,
		Certifications:     []string{},
		EcoDescription:     fmt.Sprintf("AI: %s. Confidence: %.2f", analysis.Reasoning, confidence),
		Alternatives:       alternatives,
		Source:             domain.SourceScout,
		Confidence:         confidence,
	}
}
