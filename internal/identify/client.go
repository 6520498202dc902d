package identify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/shopradar/price-finder-api/internal/dto"
	"github.com/shopradar/price-finder-api/internal/observability"
)

const (
	defaultModel = openai.GPT4oMini

	identifyPrompt = `Identify the retail product in this photo. Respond with a single JSON object:
{"name": "<product name including size/volume if visible>", "brand": "<brand>", "category": "<category>", "description": "<one sentence>", "confidence": <0.0-1.0>}
Use empty strings for anything you cannot determine.`
)

// ChatCompleter is the slice of the OpenAI client the identifier needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client is a thin pass-through over a vision model: one image in, one
// structured product guess out. Callers compose their shopping query as
// brand + " " + name.
type Client struct {
	ai    ChatCompleter
	model string
}

// Option configures optional client dependencies.
type Option func(*Client)

// WithModel overrides the vision model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithChatCompleter injects a custom completion backend, for tests.
func WithChatCompleter(ai ChatCompleter) Option {
	return func(c *Client) {
		if ai != nil {
			c.ai = ai
		}
	}
}

// NewClient builds an identification client from an API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		ai:    openai.NewClient(apiKey),
		model: defaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identify sends the image to the vision model and decodes its JSON verdict.
// imageURL may be an https URL or a data URL built from an uploaded photo.
func (c *Client) Identify(ctx context.Context, imageURL string) (*dto.IdentifyResponse, error) {
	resp, err := c.ai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: identifyPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	observability.ObserveUpstream("identify", err)
	if err != nil {
		return nil, fmt.Errorf("identification request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("identification returned no choices")
	}

	var result dto.IdentifyResponse
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("decoding identification response: %w", err)
	}
	return &result, nil
}

// DataURL wraps a base64-encoded JPEG payload for inline submission.
func DataURL(imageBase64 string) string {
	return "data:image/jpeg;base64," + imageBase64
}
