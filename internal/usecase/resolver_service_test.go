package usecase

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolens/backend/internal/domain"
)

// fakeAnalyzer scripts the AI tiers
type fakeAnalyzer struct {
	textAnalysis *domain.AIAnalysis
	textErr      error
	textDelay    time.Duration
	textCalls    int

	scoutAnalysis *domain.AIAnalysis
	scoutErr      error
	scoutCalls    int

	imageAnalysis *domain.AIAnalysis
	imageErr      error
	imageCalls    int
}

func (f *fakeAnalyzer) AnalyzeText(ctx context.Context, query string) (*domain.AIAnalysis, error) {
	f.textCalls++
	if f.textDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.textDelay):
		}
	}
	return f.textAnalysis, f.textErr
}

func (f *fakeAnalyzer) AnalyzeImage(ctx context.Context, image []byte, mimeType string, fastMode bool) (*domain.AIAnalysis, error) {
	f.imageCalls++
	return f.imageAnalysis, f.imageErr
}

func (f *fakeAnalyzer) ScoutText(ctx context.Context, query string) (*domain.AIAnalysis, error) {
	f.scoutCalls++
	return f.scoutAnalysis, f.scoutErr
}

// fakeCatalog scripts the enrichment tier
type fakeCatalog struct {
	barcodeRecord *domain.RawCatalogRecord
	barcodeErr    error
	barcodeCalls  int

	searchRecords []domain.RawCatalogRecord
	searchErr     error
	searchCalls   int
	lastSearch    string
}

func (f *fakeCatalog) GetProductByBarcode(ctx context.Context, barcode string) (*domain.RawCatalogRecord, error) {
	f.barcodeCalls++
	return f.barcodeRecord, f.barcodeErr
}

func (f *fakeCatalog) SearchProductsByName(ctx context.Context, name string) ([]domain.RawCatalogRecord, error) {
	f.searchCalls++
	f.lastSearch = name
	return f.searchRecords, f.searchErr
}

func floatPtr(v float64) *float64 { return &v }

func testEstimator() SubScoreEstimator {
	return FixedEstimator{Scores: SubScores{
		Packaging: 50, Carbon: 50, Ingredient: 60, Certification: 45, Health: 55,
	}}
}

func newTestResolver(analyzer domain.ProductAnalyzer, cat domain.CatalogClient, cfg ResolverConfig) *ResolverService {
	demo := NewDemoCatalog(rand.New(rand.NewSource(1)))
	return NewResolverService(analyzer, cat, testEstimator(), demo, cfg)
}

func TestResolve_AIWithCatalogEnrichment(t *testing.T) {
	// AI succeeds, catalog barcode lookup matches: identity and overall
	// score from AI, sub-scores from the catalog.
	analyzer := &fakeAnalyzer{
		textAnalysis: &domain.AIAnalysis{
			ProductName:  "Bamboo Toothbrush",
			Brand:        "GreenRoot",
			EcoScore:     floatPtr(90),
			Confidence:   0.9,
			Reasoning:    "Compostable handle",
			Alternatives: []domain.Alternative{},
		},
	}
	cat := &fakeCatalog{
		barcodeRecord: &domain.RawCatalogRecord{
			ProductName:     "Toothbrush bamboo",
			Packaging:       "cardboard, recyclable",
			NutriScoreGrade: "a",
			EcoScoreGrade:   "e", // catalog disagrees; AI score must win
		},
	}
	resolver := newTestResolver(analyzer, cat, ResolverConfig{})

	product := resolver.Resolve(context.Background(), domain.ResolveInput{Barcode: "4006381333931"})

	require.NotNil(t, product)
	assert.Equal(t, "Bamboo Toothbrush", product.ProductName)
	assert.Equal(t, 90.0, product.EcoScore)
	assert.True(t, product.Recyclable)
	assert.Equal(t, 90.0, product.HealthScore)
	assert.Equal(t, 75.0, product.PackagingScore)
	assert.Equal(t, domain.SourceCatalog, product.Source)
	assert.Contains(t, product.EcoDescription, "AI: Compostable handle")
	assert.Contains(t, product.EcoDescription, "Extra info (catalog):")
	assert.Equal(t, 1, cat.barcodeCalls)
	assert.Equal(t, 0, cat.searchCalls)
	assert.Equal(t, 0, analyzer.scoutCalls)
}

func TestResolve_AITimeoutCascadesToScout(t *testing.T) {
	analyzer := &fakeAnalyzer{
		textDelay: 500 * time.Millisecond,
		textAnalysis: &domain.AIAnalysis{
			ProductName: "Never Returned",
		},
		scoutAnalysis: &domain.AIAnalysis{
			ProductName: "Oat Drink",
			EcoScore:    floatPtr(70),
			Confidence:  0.5,
			Reasoning:   "Best guess",
		},
	}
	cat := &fakeCatalog{}
	resolver := newTestResolver(analyzer, cat, ResolverConfig{AITimeout: 20 * time.Millisecond})

	product := resolver.Resolve(context.Background(), domain.ResolveInput{ProductName: "oat drink"})

	require.NotNil(t, product)
	assert.Equal(t, domain.SourceScout, product.Source)
	assert.Equal(t, "Oat Drink", product.ProductName)
	assert.Equal(t, 1, analyzer.scoutCalls, "timeout must cascade to the scout tier")
	assert.Equal(t, 0, cat.barcodeCalls)
	assert.Equal(t, 0, cat.searchCalls, "failed AI tier must not trigger enrichment")
}

func TestResolve_ScoutRecordShape(t *testing.T) {
	analyzer := &fakeAnalyzer{
		textErr: errors.New("primary down"),
		scoutAnalysis: &domain.AIAnalysis{
			ProductName: "Oat Drink",
			EcoScore:    floatPtr(70),
			Confidence:  0.5,
			Reasoning:   "Best guess",
		},
	}
	resolver := newTestResolver(analyzer, &fakeCatalog{}, ResolverConfig{})

	product := resolver.Resolve(context.Background(), domain.ResolveInput{ProductName: "oat drink"})

	require.NotNil(t, product)
	assert.Equal(t, domain.SourceScout, product.Source)
	assert.Equal(t, 70.0, product.EcoScore)
	// Heuristic sub-scores from the injected estimator
	assert.Equal(t, 50.0, product.PackagingScore)
	assert.Equal(t, 60.0, product.IngredientScore)
	assert.Equal(t, 55.0, product.HealthScore)
	assert.False(t, product.Recyclable)
	assert.Equal(t, domain.CO2Unknown, product.CO2Impact)
	assert.NotNil(t, product.Certifications)
	assert.NotNil(t, product.Alternatives)
}

func TestResolve_TotalFailureServesDemo(t *testing.T) {
	analyzer := &fakeAnalyzer{
		textErr:  errors.New("primary down"),
		scoutErr: errors.New("scout down"),
	}
	resolver := newTestResolver(analyzer, &fakeCatalog{}, ResolverConfig{})

	product := resolver.Resolve(context.Background(), domain.ResolveInput{ProductName: "anything"})

	require.NotNil(t, product, "the pipeline never returns nil")
	assert.Equal(t, domain.SourceDemo, product.Source)
	assert.NotEmpty(t, product.ProductName)
	assert.NotEmpty(t, product.Brand)
	assert.NotEmpty(t, product.EcoDescription)
	assert.False(t, math.IsNaN(product.EcoScore))
	assert.GreaterOrEqual(t, product.EcoScore, 0.0)
	assert.LessOrEqual(t, product.EcoScore, 100.0)
	assert.NotNil(t, product.Certifications)
	assert.NotNil(t, product.Alternatives)
}

func TestResolve_EnrichmentErrorSwallowed(t *testing.T) {
	analyzer := &fakeAnalyzer{
		textAnalysis: &domain.AIAnalysis{
			ProductName: "Oat Drink",
			EcoScore:    floatPtr(82),
			Confidence:  0.8,
			Reasoning:   "Low footprint crop",
		},
	}
	cat := &fakeCatalog{barcodeErr: errors.New("connection reset")}
	resolver := newTestResolver(analyzer, cat, ResolverConfig{})

	product := resolver.Resolve(context.Background(), domain.ResolveInput{Barcode: "7394376616161"})

	require.NotNil(t, product)
	assert.Equal(t, "Oat Drink", product.ProductName)
	assert.Equal(t, 82.0, product.EcoScore)
	assert.Equal(t, domain.SourceAI, product.Source)
	// Documented defaults when enrichment is absent
	assert.Equal(t, 55.0, product.PackagingScore)
	assert.Equal(t, 55.0, product.CarbonScore)
	assert.Equal(t, 55.0, product.IngredientScore)
	assert.Equal(t, 50.0, product.CertificationScore)
	assert.Equal(t, 50.0, product.HealthScore)
	assert.False(t, product.Recyclable)
	assert.Equal(t, domain.CO2Unknown, product.CO2Impact)
	assert.Empty(t, product.Certifications)
}

func TestResolve_NameInputSearchesCatalogByName(t *testing.T) {
	analyzer := &fakeAnalyzer{
		textAnalysis: &domain.AIAnalysis{
			ProductName: "Choco Bites",
			EcoScore:    floatPtr(40),
			Confidence:  0.7,
		},
	}
	cat := &fakeCatalog{
		searchRecords: []domain.RawCatalogRecord{
			{ProductName: "Choco Bites", NutriScoreGrade: "d"},
			{ProductName: "Choco Bites XXL"},
		},
	}
	resolver := newTestResolver(analyzer, cat, ResolverConfig{})

	product := resolver.Resolve(context.Background(), domain.ResolveInput{ProductName: "Choco Bites, Family Pack, 500 g"})

	require.NotNil(t, product)
	assert.Equal(t, 0, cat.barcodeCalls, "no barcode to look up")
	assert.Equal(t, 1, cat.searchCalls)
	assert.Equal(t, "Choco Bites", cat.lastSearch, "AI-resolved name drives the search, cleaned")
	// First result only
	assert.Equal(t, 40.0, product.HealthScore)
	assert.Equal(t, domain.SourceCatalog, product.Source)
}

func TestResolve_MissingAIEcoScoreDefaults(t *testing.T) {
	analyzer := &fakeAnalyzer{
		textAnalysis: &domain.AIAnalysis{ProductName: "Mystery Snack", Confidence: 0.4},
	}
	cat := &fakeCatalog{barcodeErr: domain.ErrProductNotFound}
	resolver := newTestResolver(analyzer, cat, ResolverConfig{})

	product := resolver.Resolve(context.Background(), domain.ResolveInput{Barcode: "1111111111111"})

	require.NotNil(t, product)
	assert.Equal(t, 55.0, product.EcoScore)
}

func TestResolve_ConfidenceGate(t *testing.T) {
	analyzer := &fakeAnalyzer{
		textAnalysis: &domain.AIAnalysis{
			ProductName: "Doubtful Widget",
			EcoScore:    floatPtr(60),
			Confidence:  0.2,
		},
		scoutAnalysis: &domain.AIAnalysis{
			ProductName: "Scouted Widget",
			Confidence:  0.5,
		},
	}
	resolver := newTestResolver(analyzer, &fakeCatalog{}, ResolverConfig{MinConfidence: 0.8})

	product := resolver.Resolve(context.Background(), domain.ResolveInput{ProductName: "widget"})

	require.NotNil(t, product)
	assert.Equal(t, domain.SourceScout, product.Source)
	assert.Equal(t, "Scouted Widget", product.ProductName)
}

func TestResolve_ImageInputPrefersImagePath(t *testing.T) {
	analyzer := &fakeAnalyzer{
		imageAnalysis: &domain.AIAnalysis{
			ProductName: "Sparkling Water Lemon",
			EcoScore:    floatPtr(70),
			Confidence:  0.85,
		},
	}
	cat := &fakeCatalog{searchErr: domain.ErrProductNotFound}
	resolver := newTestResolver(analyzer, cat, ResolverConfig{})

	product := resolver.Resolve(context.Background(), domain.ResolveInput{
		ProductName: "ignored",
		Image:       []byte{0xFF, 0xD8},
		ImageMIME:   "image/jpeg",
	})

	require.NotNil(t, product)
	assert.Equal(t, 1, analyzer.imageCalls)
	assert.Equal(t, 0, analyzer.textCalls)
	assert.Equal(t, "Sparkling Water Lemon", product.ProductName)
}

func TestResolve_Deterministic(t *testing.T) {
	build := func() *domain.CanonicalProduct {
		analyzer := &fakeAnalyzer{
			textAnalysis: &domain.AIAnalysis{
				ProductName: "Oat Drink",
				EcoScore:    floatPtr(82),
				Confidence:  0.8,
				Reasoning:   "Low footprint crop",
			},
		}
		cat := &fakeCatalog{
			barcodeRecord: &domain.RawCatalogRecord{
				ProductName:     "Oat Drink Original",
				Packaging:       "recyclable carton",
				NutriScoreGrade: "b",
				LabelsTags:      []string{"en:organic"},
			},
		}
		resolver := newTestResolver(analyzer, cat, ResolverConfig{})
		return resolver.Resolve(context.Background(), domain.ResolveInput{Barcode: "7394376616161"})
	}

	first := build()
	second := build()
	assert.Equal(t, first, second, "same mocked inputs must yield identical output")
}

func TestMergeEnrichment_NilEnrichmentDefaults(t *testing.T) {
	base := &domain.CanonicalProduct{
		ProductName: "Widget",
		EcoScore:    80,
		Source:      domain.SourceAI,
	}

	merged := mergeEnrichment(base, nil)

	assert.Equal(t, 55.0, merged.PackagingScore)
	assert.Equal(t, 55.0, merged.CarbonScore)
	assert.Equal(t, 55.0, merged.IngredientScore)
	assert.Equal(t, 50.0, merged.CertificationScore)
	assert.Equal(t, 50.0, merged.HealthScore)
	assert.False(t, merged.Recyclable)
	assert.Equal(t, domain.CO2Unknown, merged.CO2Impact)
	assert.Equal(t, []string{}, merged.Certifications)
	assert.Equal(t, domain.SourceAI, merged.Source)
}

func TestMergeEnrichment_Precedence(t *testing.T) {
	base := &domain.CanonicalProduct{
		ProductName: "Widget",
		EcoScore:    80,
		Source:      domain.SourceAI,
	}
	enrichment := &domain.CatalogEnrichment{
		ProductName:    "", // empty catalog identity must not clobber base
		Brand:          "Acme",
		EcoScore:       40,
		PackagingScore: 70,
	}

	merged := mergeEnrichment(base, enrichment)

	assert.Equal(t, 80.0, merged.EcoScore, "base is the overall-score authority")
	assert.Equal(t, 70.0, merged.PackagingScore, "enrichment supplies what base lacks")
	assert.Equal(t, "Widget", merged.ProductName, "non-empty base identity kept")
	assert.Equal(t, "Acme", merged.Brand, "catalog fills the gap")
	assert.Equal(t, domain.SourceCatalog, merged.Source)
}

func TestMergeEnrichment_AlternativesFallback(t *testing.T) {
	enrichment := &domain.CatalogEnrichment{
		Alternatives: []domain.Alternative{{ProductName: "Catalog Alt"}},
	}

	t.Run("base alternatives win", func(t *testing.T) {
		base := &domain.CanonicalProduct{
			Alternatives: []domain.Alternative{{ProductName: "AI Alt"}},
		}
		merged := mergeEnrichment(base, enrichment)
		require.Len(t, merged.Alternatives, 1)
		assert.Equal(t, "AI Alt", merged.Alternatives[0].ProductName)
	})

	t.Run("enrichment fills empty list", func(t *testing.T) {
		base := &domain.CanonicalProduct{Alternatives: []domain.Alternative{}}
		merged := mergeEnrichment(base, enrichment)
		require.Len(t, merged.Alternatives, 1)
		assert.Equal(t, "Catalog Alt", merged.Alternatives[0].ProductName)
	})
}
