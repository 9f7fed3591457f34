package gemini

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"github.com/ecolens/backend/internal/domain"
)

// Client is a thin wrapper around the official genai client. It only
// handles the API call itself; prompting and response parsing live in
// the analyzer service.
type Client struct {
	cli       *genai.Client
	model     string
	fastModel string
}

// NewClient creates a Gemini-backed generative client. A missing API key
// is a fatal configuration error, raised here rather than on first use.
func NewClient(ctx context.Context, apiKey, model, fastModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAIAPIFailure, err)
	}

	if fastModel == "" {
		fastModel = model
	}
	return &Client{cli: cli, model: model, fastModel: fastModel}, nil
}

// GenerateText sends a text prompt and returns the raw model text.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	contents := []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}
	return c.generate(ctx, contents, opts)
}

// GenerateVision sends a prompt plus inline image data and returns the
// raw model text.
func (c *Client) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string, opts domain.GenerateOptions) (string, error) {
	contents := []*genai.Content{{Parts: []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		{Text: prompt},
	}}}
	return c.generate(ctx, contents, opts)
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, opts domain.GenerateOptions) (string, error) {
	model := c.model
	if opts.Fast {
		model = c.fastModel
	}

	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	}

	resp, err := c.cli.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAIAPIFailure, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domain.ErrNoAnalysis
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", domain.ErrNoAnalysis
	}
	return sb.String(), nil
}
