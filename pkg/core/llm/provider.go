package llm

import (
	"context"
	"errors"
	"os"
)

// ErrMissingAPIKey is returned when a provider has no credentials.
var ErrMissingAPIKey = errors.New("api key not configured")

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Recognised option keys.
const (
	OptionModel       = "model"
	OptionAPIKey      = "api_key"
	OptionTemperature = "temperature"
	OptionMaxTokens   = "max_tokens"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2500
)

func stringOption(options map[string]interface{}, key, def string) string {
	if val, ok := options[key].(string); ok && val != "" {
		return val
	}
	return def
}

func floatOption(options map[string]interface{}, key string, def float64) float64 {
	switch v := options[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return def
}

func intOption(options map[string]interface{}, key string, def int) int {
	switch v := options[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return int(v)
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return def
}

// apiKey picks the key from options, then the configured value, then the
// first set environment variable.
func apiKey(options map[string]interface{}, configured string, envVars ...string) string {
	if key := stringOption(options, OptionAPIKey, configured); key != "" {
		return key
	}
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
