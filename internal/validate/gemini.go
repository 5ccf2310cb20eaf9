package validate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient calls Google Gemini through the generative-ai-go SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
	// generate is swapped out in tests.
	generate func(ctx context.Context, prompt string) (string, error)
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	g := &GeminiClient{client: client, model: model}
	g.generate = g.generateContent
	return g, nil
}

func (g *GeminiClient) generateContent(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from gemini")
	}
	return sb.String(), nil
}

// SuggestFields asks Gemini for field values. Rate limits and server errors
// come back as *RetryableError.
func (g *GeminiClient) SuggestFields(ctx context.Context, req Request) (Suggestions, error) {
	start := time.Now()
	text, err := g.generate(ctx, BuildPrompt(req))
	if err != nil {
		return Suggestions{}, err
	}
	fields, err := parseSuggestions(text)
	if err != nil {
		return Suggestions{}, err
	}
	return Suggestions{
		DocumentID:  req.DocumentID,
		Provider:    "gemini",
		Model:       g.model,
		Fields:      fields,
		GeneratedAt: time.Now().UTC(),
		DurationMs:  time.Since(start).Milliseconds(),
	}, nil
}

func (g *GeminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func classifyGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500) {
		return &RetryableError{StatusCode: gerr.Code, Message: gerr.Message}
	}
	return fmt.Errorf("gemini api: %w", err)
}
