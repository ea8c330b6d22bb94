package planner

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModel plans with a Google Gemini model.
type GeminiModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGeminiModel opens a Gemini client. Close releases it.
func NewGeminiModel(ctx context.Context, apiKey, modelName string) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(plannerTemperature)
	model.ResponseMIMEType = "application/json"
	return &GeminiModel{client: client, model: model, name: modelName}, nil
}

func (g *GeminiModel) Name() string { return "gemini:" + g.name }

func (g *GeminiModel) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if len(prompt.Turns) == 0 {
		return "", fmt.Errorf("gemini: empty prompt")
	}

	// Copy so concurrent plans do not share the system instruction.
	model := *g.model
	if prompt.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}
	}
	session := model.StartChat()
	history := make([]*genai.Content, 0, len(prompt.Turns)-1)
	for _, t := range prompt.Turns[:len(prompt.Turns)-1] {
		role := "user"
		if t.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Content)}})
	}
	session.History = history

	last := prompt.Turns[len(prompt.Turns)-1]
	resp, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: no response candidates")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text, nil
}

// Close releases the underlying client.
func (g *GeminiModel) Close() error {
	return g.client.Close()
}
