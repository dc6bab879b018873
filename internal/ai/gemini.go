package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures the Gemini completer.
type GeminiConfig struct {
	APIKey string
	Model  string
	// JSONMode asks the model for application/json output instead of free text.
	JSONMode bool
}

// GeminiClient implements Completer using Google's Gemini models.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	jsonMode  bool
}

// NewGeminiClient initializes a new Gemini client. Close releases it.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
		jsonMode:  cfg.JSONMode,
	}, nil
}

// Close cleans up the Gemini client resources.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func (g *GeminiClient) Name() string {
	return "gemini/" + g.modelName
}

// Complete maps system messages to the model's system instruction and the
// remaining turns to user content.
func (g *GeminiClient) Complete(ctx context.Context, messages []Message) (string, error) {
	// A fresh GenerativeModel per call: the system instruction differs per prompt
	// and the handle is shared across concurrent chunk workers.
	model := g.client.GenerativeModel(g.modelName)
	if g.jsonMode {
		model.ResponseMIMEType = "application/json"
	}
	model.SetTemperature(0.4)

	var system []genai.Part
	var parts []genai.Part
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, genai.Text(m.Content))
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(parts) == 0 {
		return "", errors.New("gemini: no user content")
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: API returned empty candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("gemini: API returned empty text parts")
	}
	return text, nil
}
