package http

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecolens/backend/internal/domain"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver domain.ProductResolver
	analyzer domain.ProductAnalyzer
	cache    domain.CacheRepository
	cacheTTL time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(resolver domain.ProductResolver, analyzer domain.ProductAnalyzer, cache domain.CacheRepository, cacheTTL time.Duration) *Handler {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Handler{
		resolver: resolver,
		analyzer: analyzer,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ecolens-backend",
		"version": "1.0.0",
	})
}

// resolveRequest identifies the product to resolve. One of barcode,
// productName or imageBase64 must be supplied.
type resolveRequest struct {
	Barcode       string `json:"barcode"`
	ProductName   string `json:"productName"`
	ImageBase64   string `json:"imageBase64"`
	ImageMimeType string `json:"imageMimeType"`
	FastMode      bool   `json:"fastMode"`
}

func (r *resolveRequest) toInput() (domain.ResolveInput, error) {
	input := domain.ResolveInput{
		Barcode:     strings.TrimSpace(r.Barcode),
		ProductName: strings.TrimSpace(r.ProductName),
		ImageMIME:   r.ImageMimeType,
		FastMode:    r.FastMode,
	}

	if r.ImageBase64 != "" {
		image, err := base64.StdEncoding.DecodeString(r.ImageBase64)
		if err != nil {
			return domain.ResolveInput{}, fmt.Errorf("%w: invalid imageBase64", domain.ErrInvalidRequest)
		}
		input.Image = image
	}

	if input.Barcode == "" && input.ProductName == "" && len(input.Image) == 0 {
		return domain.ResolveInput{}, fmt.Errorf("%w: one of barcode, productName or imageBase64 is required", domain.ErrInvalidRequest)
	}

	return input, nil
}

// ResolveProduct runs the full resolution pipeline for a scanned or
// named product. Always returns a record on valid input; the pipeline
// has no terminal failure state.
func (h *Handler) ResolveProduct(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cacheKey := resolveCacheKey(input)
	if cacheKey != "" && h.cache != nil {
		if cached, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil && cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	product := h.resolver.Resolve(c.Request.Context(), input)

	// Only live-verified records are worth caching; scout and demo
	// records are filler.
	if cacheKey != "" && h.cache != nil &&
		(product.Source == domain.SourceAI || product.Source == domain.SourceCatalog) {
		if err := h.cache.Set(c.Request.Context(), cacheKey, product, h.cacheTTL); err != nil {
			log.Printf("[HTTP] Cache store failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, product)
}

// analyzeRequest asks for the AI step only, without enrichment
type analyzeRequest struct {
	Query         string `json:"query"`
	ImageBase64   string `json:"imageBase64"`
	ImageMimeType string `json:"imageMimeType"`
	FastMode      bool   `json:"fastMode"`
}

// AnalyzeProduct exposes the analyzer as a separately callable unit for
// UI flows that want the AI result without catalog enrichment.
func (h *Handler) AnalyzeProduct(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	var analysis *domain.AIAnalysis
	var err error
	switch {
	case req.ImageBase64 != "":
		image, derr := base64.StdEncoding.DecodeString(req.ImageBase64)
		if derr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid imageBase64"})
			return
		}
		analysis, err = h.analyzer.AnalyzeImage(c.Request.Context(), image, req.ImageMimeType, req.FastMode)
	case strings.TrimSpace(req.Query) != "":
		analysis, err = h.analyzer.AnalyzeText(c.Request.Context(), req.Query)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "one of query or imageBase64 is required"})
		return
	}

	if err != nil {
		log.Printf("[HTTP] Analysis failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis backend unavailable"})
		return
	}
	if analysis == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not analyze product"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

var cacheKeyCleanRegex = regexp.MustCompile(`[^a-z0-9]+`)

// resolveCacheKey builds a normalized cache key, or "" when the input
// is not cacheable (image lookups vary per photo).
func resolveCacheKey(input domain.ResolveInput) string {
	if len(input.Image) > 0 {
		return ""
	}
	if input.Barcode != "" {
		return "resolve:barcode:" + input.Barcode
	}
	name := cacheKeyCleanRegex.ReplaceAllString(strings.ToLower(input.ProductName), " ")
	return "resolve:name:" + strings.TrimSpace(name)
}
