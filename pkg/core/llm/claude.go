package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeProvider implements Provider over the Anthropic Messages API.
type ClaudeProvider struct {
	Model   string
	APIKey  string
	BaseURL string
}

var _ Provider = (*ClaudeProvider)(nil)

func (p *ClaudeProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	key := apiKey(options, p.APIKey, "ANTHROPIC_API_KEY")
	if key == "" {
		return "", fmt.Errorf("claude: %w", ErrMissingAPIKey)
	}

	model := p.Model
	if model == "" {
		model = "claude-sonnet-4-5"
	}

	opts := []option.RequestOption{option.WithAPIKey(key), option.WithMaxRetries(1)}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(stringOption(options, OptionModel, model)),
		MaxTokens: int64(intOption(options, OptionMaxTokens, DefaultMaxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(floatOption(options, OptionTemperature, DefaultTemperature)),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude api call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("claude: empty response")
	}
	return response.String(), nil
}

func (p *ClaudeProvider) AdaptInstructions(raw string) string {
	return raw
}
