package domain

import "errors"

var (
	// ErrProductNotFound is returned when the catalog has no record for a
	// barcode or name query.
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrMissingAPIKey is a fatal configuration error: the generative AI
	// credential is absent. This is the one error the pipeline never swallows.
	ErrMissingAPIKey = errors.New("generative AI API key is not configured")

	// ErrAIAPIFailure is returned when a generative AI request fails
	ErrAIAPIFailure = errors.New("generative AI request failed")

	// ErrNoAnalysis means the model responded but produced no usable
	// analysis (empty candidate or unparseable payload). Soft failure.
	ErrNoAnalysis = errors.New("no analysis produced")

	// ErrCatalogAPIFailure is returned when a catalog API request fails
	ErrCatalogAPIFailure = errors.New("catalog API request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
