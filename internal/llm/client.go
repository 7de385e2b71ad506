// Package llm provides the Gemini API client used for world generation,
// embeddings, and model-directed function calls.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-1.5-flash"
	embedModel   = "text-embedding-004"

	// worldToolName is the single callable signature declared to the model.
	worldToolName = "generateWorld"
)

// ErrDisabled is returned by every call on a client without an API key.
var ErrDisabled = errors.New("llm: client not configured")

// Client wraps the Gemini API for text generation, embeddings, and tool
// calls. A nil Client is valid and reports itself as disabled, so the rest
// of the service degrades to fallback behavior without nil checks at every
// call site.
type Client struct {
	genai *genai.Client
	model string
	retry RetryPolicy
}

// NewClient creates a Gemini client. Returns nil if apiKey is empty (LLM
// features disabled). An empty model selects the default.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, nil
	}
	if model == "" {
		model = defaultModel
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{genai: gc, model: model, retry: DefaultRetryPolicy()}, nil
}

// Enabled returns true if the client has a usable API connection.
func (c *Client) Enabled() bool {
	return c != nil && c.genai != nil
}

// Generate sends a prompt to the generation model and returns the response
// text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}

	slog.Debug("gemini call", "model", c.model, "response_len", len(text))
	return text, nil
}

// Embed requests an embedding vector for the given text. Rate-limit
// failures are retried under the client's retry policy; any other failure
// returns immediately.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	var values []float32
	err := c.retry.Do(func() error {
		contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
		resp, err := c.genai.Models.EmbedContent(ctx, embedModel, contents, nil)
		if err != nil {
			return fmt.Errorf("embed content: %w", err)
		}
		if len(resp.Embeddings) == 0 {
			return fmt.Errorf("no embeddings returned")
		}
		values = resp.Embeddings[0].Values
		return nil
	}, isRateLimited)
	if err != nil {
		return nil, err
	}

	return values, nil
}

// ToolCall is a function invocation the model elected to make.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// RequestWorldCall forwards a free-text message to the model along with the
// generateWorld function declaration. It returns the model's tool call, or
// nil when the model answered with plain text or named a different function.
func (c *Client) RequestWorldCall(ctx context.Context, message string) (*ToolCall, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        worldToolName,
				Description: "Generate a fictional world",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"biome":   {Type: genai.TypeString},
						"culture": {Type: genai.TypeString},
						"tone":    {Type: genai.TypeString},
					},
					Required: []string{"biome", "culture", "tone"},
				},
			}},
		}},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(message), config)
	if err != nil {
		return nil, fmt.Errorf("generate content with tools: %w", err)
	}

	for _, fc := range resp.FunctionCalls() {
		if fc.Name == worldToolName {
			return &ToolCall{Name: fc.Name, Args: fc.Args}, nil
		}
	}
	return nil, nil
}

// isRateLimited reports whether the error is a 429 from the Gemini API.
func isRateLimited(err error) bool {
	var apiErr genai.APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}
