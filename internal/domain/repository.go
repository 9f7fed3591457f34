package domain

import (
	"context"
	"time"
)

// GenerativeClient defines the interface to the upstream generative AI
// endpoint. Implementations own transport concerns only; prompting and
// response parsing live in the analyzer.
type GenerativeClient interface {
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string, opts GenerateOptions) (string, error)
}

// CatalogClient defines the interface for the public product catalog.
type CatalogClient interface {
	GetProductByBarcode(ctx context.Context, barcode string) (*RawCatalogRecord, error)
	SearchProductsByName(ctx context.Context, name string) ([]RawCatalogRecord, error)
}

// ProductAnalyzer exposes the AI tier as a separately callable unit.
// All three operations report "could not analyze" as (nil, nil), not as
// an error; errors are reserved for transport and configuration failures.
type ProductAnalyzer interface {
	AnalyzeText(ctx context.Context, query string) (*AIAnalysis, error)
	AnalyzeImage(ctx context.Context, image []byte, mimeType string, fastMode bool) (*AIAnalysis, error)
	ScoutText(ctx context.Context, query string) (*AIAnalysis, error)
}

// ProductResolver drives the full multi-tier resolution. It never fails:
// total upstream failure degrades to a demo-sourced record.
type ProductResolver interface {
	Resolve(ctx context.Context, input ResolveInput) *CanonicalProduct
}

// CacheRepository defines the interface for caching resolved products.
type CacheRepository interface {
	Get(ctx context.Context, key string) (*CanonicalProduct, error)
	Set(ctx context.Context, key string, product *CanonicalProduct, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
