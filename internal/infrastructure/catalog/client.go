package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/ecolens/backend/internal/domain"
	"golang.org/x/time/rate"
)

// searchPageSize limits name searches; the resolver only consumes the
// first result.
const searchPageSize = 5

// Client handles communication with the Open Food Facts API.
// No credential is required by this catalog.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new catalog API client. reqPerMin bounds outbound
// request rate; Open Food Facts asks clients to stay well under 100/min.
func NewClient(baseURL string, reqPerMin int) *Client {
	if reqPerMin <= 0 {
		reqPerMin = 100
	}
	limiter := rate.NewLimiter(rate.Limit(float64(reqPerMin)/60.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Open Food Facts requires an identifying User-Agent
	req.Header.Set("User-Agent", "EcoLens/1.0 (backend)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogAPIFailure, err)
	}

	return resp, nil
}

// GetProductByBarcode fetches a single product record by barcode.
// A status of 0 in the response body means the catalog has no match.
func (c *Client) GetProductByBarcode(ctx context.Context, barcode string) (*domain.RawCatalogRecord, error) {
	if barcode == "" {
		return nil, domain.ErrInvalidRequest
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(barcode))
	if c.debug {
		log.Printf("[CATALOG] GET %s", reqURL)
	}

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrCatalogAPIFailure, resp.StatusCode, string(body))
	}

	var productResp domain.CatalogProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&productResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if productResp.Status != 1 || productResp.Product == nil {
		log.Printf("[CATALOG] No product for barcode %q", barcode)
		return nil, domain.ErrProductNotFound
	}

	return productResp.Product, nil
}

// SearchProductsByName searches the catalog by free-text name.
func (c *Client) SearchProductsByName(ctx context.Context, name string) ([]domain.RawCatalogRecord, error) {
	if name == "" {
		return nil, domain.ErrInvalidRequest
	}

	log.Printf("[CATALOG] SearchProductsByName called with query: %q", name)

	endpoint := fmt.Sprintf("%s/cgi/search.pl", c.baseURL)
	params := url.Values{}
	params.Add("search_terms", name)
	params.Add("search_simple", "1")
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("page_size", fmt.Sprintf("%d", searchPageSize))

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			log.Printf("[CATALOG] Rate limiter error: %v", err)
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Printf("[CATALOG] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			if !sleepCtx(ctx, exponentialBackoff(attempt)) {
				return nil, ctx.Err()
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[CATALOG] API error (attempt %d) - Status: %d", attempt, resp.StatusCode)
			if resp.StatusCode == http.StatusNotFound {
				return nil, domain.ErrProductNotFound
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogAPIFailure, resp.StatusCode)
			if !sleepCtx(ctx, exponentialBackoff(attempt)) {
				return nil, ctx.Err()
			}
			continue
		}

		var searchResp domain.CatalogSearchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			log.Printf("[CATALOG] JSON decode error: %v", err)
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		if len(searchResp.Products) == 0 {
			log.Printf("[CATALOG] No products found for query: %q", name)
			return nil, domain.ErrProductNotFound
		}

		log.Printf("[CATALOG] Found %d products for query: %q", len(searchResp.Products), name)
		return searchResp.Products, nil
	}

	log.Printf("[CATALOG] All retries failed for query: %q", name)
	return nil, lastErr
}

// exponentialBackoff returns the wait before the next retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250*(1<<uint(attempt-1))) * time.Millisecond
}

// sleepCtx sleeps for d unless ctx is cancelled first; reports whether
// the full sleep completed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
