package companion

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const maxOutputTokens = 250

// GeminiCompleter talks to the Gemini API. Construct it once in main and
// inject it; it holds the model id and generation parameters explicitly.
type GeminiCompleter struct {
	client  *genai.Client
	modelID string
}

func NewGeminiCompleter(ctx context.Context, apiKey, modelID string) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, modelID: modelID}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, message string, history []Turn) (string, error) {
	model := g.client.GenerativeModel(g.modelID)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemPrompt)}}
	model.SetMaxOutputTokens(maxOutputTokens)
	model.SetTemperature(0.7)

	chat := model.StartChat()
	for _, turn := range history {
		chat.History = append(chat.History, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	return flatten(resp), nil
}

func (g *GeminiCompleter) Close() error {
	return g.client.Close()
}

func flatten(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
