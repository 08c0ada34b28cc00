// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emerging

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultLabelModel is used when no model is configured.
const DefaultLabelModel = "claude-haiku-4-5"

const labelSystemPrompt = "You are an expert research analyst who creates precise, meaningful labels for emerging research topics. You never just list keywords."

// Messager is the subset of the Anthropic client used for labels.
type Messager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicGenerator generates labels with the Anthropic Messages API.
type AnthropicGenerator struct {
	messages Messager
	model    string
}

// NewAnthropicGenerator returns a generator authenticated with apiKey.
func NewAnthropicGenerator(apiKey, model string) (*AnthropicGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic API key not configured")
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicGeneratorWith(&c.Messages, model), nil
}

// NewAnthropicGeneratorWith wraps an existing Messager.
func NewAnthropicGeneratorWith(m Messager, model string) *AnthropicGenerator {
	if model == "" {
		model = DefaultLabelModel
	}
	return &AnthropicGenerator{messages: m, model: model}
}

// Model returns the model identifier.
func (g *AnthropicGenerator) Model() string { return g.model }

// Generate implements Generator.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   60,
		System:      []anthropic.TextBlockParam{{Text: labelSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0.4),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errors.New("anthropic returned no text content")
	}
	return sb.String(), nil
}
