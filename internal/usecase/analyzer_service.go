package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ecolens/backend/internal/domain"
)

// fencedJSONRegex extracts a ```json ... ``` block from a model response
var fencedJSONRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// analysisSchema validates the extracted AI payload before it is allowed
// to flow into a canonical record. Anything that fails here is treated
// as "no analysis", never as typed data.
const analysisSchema = `{
	"type": "object",
	"required": ["product_name"],
	"properties": {
		"product_name": {"type": "string"},
		"brand": {"type": "string"},
		"category": {"type": "string"},
		"eco_score": {"type": "number", "minimum": 0, "maximum": 100},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"reasoning": {"type": "string"},
		"alternatives": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"product_name": {"type": "string"},
					"reasoning": {"type": "string"}
				}
			}
		}
	}
}`

var compiledAnalysisSchema = jsonschema.MustCompileString("ai_analysis.json", analysisSchema)

// Generation settings per prompt variant. The fast variant trades depth
// for latency so AR-style overlays stay responsive.
var (
	standardOpts = domain.GenerateOptions{Temperature: 0.7, MaxOutputTokens: 1024}
	fastOpts     = domain.GenerateOptions{Temperature: 0.2, MaxOutputTokens: 320, Fast: true}
	scoutOpts    = domain.GenerateOptions{Temperature: 0.9, MaxOutputTokens: 512}
)

// genericImageQuery is the text fallback when image analysis fails: the
// pipeline still owes the caller a best-effort analysis.
const genericImageQuery = "an unidentified packaged consumer product photographed by a shopper"

// AnalyzerService turns noisy product identifiers (barcode, name, photo)
// into structured sustainability analyses via a generative model.
type AnalyzerService struct {
	client domain.GenerativeClient
}

// NewAnalyzerService creates a new analyzer backed by the given client
func NewAnalyzerService(client domain.GenerativeClient) *AnalyzerService {
	return &AnalyzerService{client: client}
}

// AnalyzeText analyzes a barcode or free-text product query.
// Returns (nil, nil) when the model responded but produced nothing
// parseable; errors are reserved for transport failures.
func (s *AnalyzerService) AnalyzeText(ctx context.Context, query string) (*domain.AIAnalysis, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}

	raw, err := s.client.GenerateText(ctx, textPrompt(query), standardOpts)
	if err != nil {
		return nil, err
	}

	return s.parseAnalysis(raw), nil
}

// AnalyzeImage analyzes a product photo. fastMode requests the smaller,
// lower-temperature variant for near-real-time overlay use. When the
// image path fails it falls back to text analysis of a generic
// description rather than surfacing the failure.
func (s *AnalyzerService) AnalyzeImage(ctx context.Context, image []byte, mimeType string, fastMode bool) (*domain.AIAnalysis, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := imagePrompt()
	opts := standardOpts
	if fastMode {
		prompt = fastImagePrompt()
		opts = fastOpts
	}

	raw, err := s.client.GenerateVision(ctx, prompt, image, mimeType, opts)
	if err != nil {
		log.Printf("[AI] Image analysis failed, falling back to text: %v", err)
		return s.AnalyzeText(ctx, genericImageQuery)
	}

	analysis := s.parseAnalysis(raw)
	if analysis == nil {
		log.Printf("[AI] Image response unparseable, falling back to text")
		return s.AnalyzeText(ctx, genericImageQuery)
	}
	return analysis, nil
}

// ScoutText is the secondary, lower-confidence analysis attempt used
// after the primary call fails. Same endpoint contract, terser prompt.
func (s *AnalyzerService) ScoutText(ctx context.Context, query string) (*domain.AIAnalysis, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}

	raw, err := s.client.GenerateText(ctx, scoutPrompt(query), scoutOpts)
	if err != nil {
		return nil, err
	}

	return s.parseAnalysis(raw), nil
}

// parseAnalysis extracts, validates and decodes the model's JSON payload.
// Any failure is the documented soft miss: nil, never an error.
func (s *AnalyzerService) parseAnalysis(raw string) *domain.AIAnalysis {
	payload, ok := ExtractJSON(raw)
	if !ok {
		log.Printf("[AI] No JSON payload in model response")
		return nil
	}

	var generic any
	if err := json.Unmarshal(payload, &generic); err != nil {
		log.Printf("[AI] Malformed JSON from model: %v", err)
		return nil
	}
	if err := compiledAnalysisSchema.Validate(generic); err != nil {
		log.Printf("[AI] Model JSON failed schema validation: %v", err)
		return nil
	}

	var analysis domain.AIAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		log.Printf("[AI] Cannot decode validated payload: %v", err)
		return nil
	}

	return &analysis
}

// ExtractJSON pulls the JSON object out of a model response: a fenced
// ```json block first, then the outermost brace span, then the whole
// trimmed response. The boolean reports whether anything brace-shaped
// was found at all.
func ExtractJSON(raw string) ([]byte, bool) {
	if m := fencedJSONRegex.FindStringSubmatch(raw); m != nil {
		return []byte(m[1]), true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return []byte(raw[start : end+1]), true
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}
	return []byte(trimmed), true
}

const jsonShapeInstructions = `Respond with a single JSON object and nothing else, using exactly this shape:
{
  "product_name": "...",
  "brand": "...",
  "category": "...",
  "eco_score": <number 0-100>,
  "confidence": <number 0.0-1.0>,
  "reasoning": "...",
  "alternatives": [{"product_name": "...", "reasoning": "..."}]
}`

func textPrompt(query string) string {
	return fmt.Sprintf(`You are a sustainability analyst for consumer products.
Identify the product referred to by the following barcode or name and assess its environmental impact:

%q

Consider packaging, typical production footprint, ingredient sourcing and certifications.
Suggest up to 3 more sustainable alternatives with a short reason each.

%s`, query, jsonShapeInstructions)
}

func imagePrompt() string {
	return fmt.Sprintf(`You are a sustainability analyst for consumer products.
Identify the product in this photo and assess its environmental impact.
Consider packaging, typical production footprint, ingredient sourcing and certifications.
Suggest up to 3 more sustainable alternatives with a short reason each.

%s`, jsonShapeInstructions)
}

func fastImagePrompt() string {
	return fmt.Sprintf(`Identify the product in this photo. Be brief: one-sentence reasoning, at most 1 alternative.

%s`, jsonShapeInstructions)
}

func scoutPrompt(query string) string {
	return fmt.Sprintf(`Best guess: what consumer product is %q, and roughly how sustainable is it?
Keep reasoning to one sentence and suggest at most 2 alternatives.

%s`, query, jsonShapeInstructions)
}
