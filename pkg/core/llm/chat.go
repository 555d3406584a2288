package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatCompletionsProvider talks to any OpenAI-compatible /chat/completions
// endpoint. OpenAI, DeepSeek, Qwen (DashScope), Kimi and Doubao all speak it.
type ChatCompletionsProvider struct {
	Name       string
	URL        string
	Model      string
	APIKey     string
	APIKeyEnv  []string
	HTTPClient *http.Client
}

var _ Provider = (*ChatCompletionsProvider)(nil)

func NewOpenAIProvider() *ChatCompletionsProvider {
	return &ChatCompletionsProvider{
		Name:      "openai",
		URL:       "https://api.openai.com/v1/chat/completions",
		Model:     "gpt-4.1",
		APIKeyEnv: []string{"OPENAI_API_KEY"},
	}
}

func NewDeepSeekProvider() *ChatCompletionsProvider {
	return &ChatCompletionsProvider{
		Name:      "deepseek",
		URL:       "https://api.deepseek.com/chat/completions",
		Model:     "deepseek-chat",
		APIKeyEnv: []string{"DEEPSEEK_API_KEY"},
	}
}

func NewQwenProvider() *ChatCompletionsProvider {
	return &ChatCompletionsProvider{
		Name:      "qwen",
		URL:       "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions",
		Model:     "qwen-max",
		APIKeyEnv: []string{"DASHSCOPE_API_KEY", "QWEN_API_KEY"},
	}
}

func NewKimiProvider() *ChatCompletionsProvider {
	return &ChatCompletionsProvider{
		Name:      "kimi",
		URL:       "https://api.moonshot.cn/v1/chat/completions",
		Model:     "moonshot-v1-32k",
		APIKeyEnv: []string{"MOONSHOT_API_KEY", "KIMI_API_KEY"},
	}
}

func NewDoubaoProvider() *ChatCompletionsProvider {
	return &ChatCompletionsProvider{
		Name:      "doubao",
		URL:       "https://ark.cn-beijing.volces.com/api/v3/chat/completions",
		Model:     "doubao-pro-32k",
		APIKeyEnv: []string{"ARK_API_KEY", "DOUBAO_API_KEY"},
	}
}

type chatRequest struct {
	Messages       []Message       `json:"messages"`
	Model          string          `json:"model"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (p *ChatCompletionsProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	key := apiKey(options, p.APIKey, p.APIKeyEnv...)
	if key == "" {
		return "", fmt.Errorf("%s: %w", p.Name, ErrMissingAPIKey)
	}

	reqBody := chatRequest{
		Model:       stringOption(options, OptionModel, p.Model),
		MaxTokens:   intOption(options, OptionMaxTokens, DefaultMaxTokens),
		Temperature: floatOption(options, OptionTemperature, DefaultTemperature),
	}
	if systemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, Message{Content: systemPrompt, Role: "system"})
	}
	reqBody.Messages = append(reqBody.Messages, Message{Content: prompt, Role: "user"})
	if format, ok := options["response_format"].(string); ok && format != "" {
		reqBody.ResponseFormat = &ResponseFormat{Type: format}
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%s: failed to marshal request: %w", p.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("%s: failed to create request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: api call failed: %w", p.Name, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%s: failed to read body: %w", p.Name, err)
	}

	var response chatResponse
	decodeErr := json.Unmarshal(body, &response)

	if res.StatusCode != http.StatusOK {
		if decodeErr == nil && response.Error != nil {
			return "", fmt.Errorf("%s: api returned status %d: %s", p.Name, res.StatusCode, response.Error.Message)
		}
		return "", fmt.Errorf("%s: api returned status %d: %s", p.Name, res.StatusCode, string(body))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%s: failed to decode response: %w", p.Name, decodeErr)
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: empty response", p.Name)
	}

	return response.Choices[0].Message.Content, nil
}

func (p *ChatCompletionsProvider) AdaptInstructions(raw string) string {
	return raw
}
