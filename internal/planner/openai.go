package planner

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// plannerTemperature keeps model plans close to deterministic.
const plannerTemperature = 0.1

// Model completes one planning prompt and returns the raw reply text.
type Model interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
	Name() string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAIModel talks to any OpenAI-compatible chat completions endpoint.
type OpenAIModel struct {
	client *resty.Client
	model  string
}

// NewOpenAIModel returns a model client rooted at baseURL (".../v1").
func NewOpenAIModel(client *resty.Client, baseURL, apiKey, model string) *OpenAIModel {
	c := client.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &OpenAIModel{client: c, model: model}
}

func (m *OpenAIModel) Name() string { return "openai:" + m.model }

func (m *OpenAIModel) Complete(ctx context.Context, prompt Prompt) (string, error) {
	req := chatRequest{Model: m.model, Temperature: plannerTemperature}
	if prompt.System != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: prompt.System})
	}
	for _, t := range prompt.Turns {
		req.Messages = append(req.Messages, chatMessage{Role: t.Role, Content: t.Content})
	}

	var out chatResponse
	var apiErr apiError
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("chat completion: %d: %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("chat completion: status %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices")
	}
	content := out.Choices[0].Message.Content
	if content == "" {
		content = "{}"
	}
	return content, nil
}
