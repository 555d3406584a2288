package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"filing_analyzer/pkg/core/llm"
	"filing_analyzer/pkg/core/logger"
)

// AgentAnalysis is the agent that writes the filing analysis.
const AgentAnalysis = "analysis"

const defaultProvider = "openai"

type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
	// Models overrides the default model per provider name.
	Models map[string]string `yaml:"models"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Description string `yaml:"description"`
}

type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
	log       *zap.Logger
}

func NewManager(config Config) *Manager {
	openai := llm.NewOpenAIProvider()
	deepseek := llm.NewDeepSeekProvider()
	qwen := llm.NewQwenProvider()
	kimi := llm.NewKimiProvider()
	doubao := llm.NewDoubaoProvider()
	gemini := &llm.GeminiProvider{}
	claude := &llm.ClaudeProvider{}

	for _, p := range []*llm.ChatCompletionsProvider{openai, deepseek, qwen, kimi, doubao} {
		if model := config.Models[p.Name]; model != "" {
			p.Model = model
		}
	}
	if model := config.Models["gemini"]; model != "" {
		gemini.Model = model
	}
	if model := config.Models["claude"]; model != "" {
		claude.Model = model
	}

	return NewManagerWithProviders(config, map[string]llm.Provider{
		"openai":   openai,
		"deepseek": deepseek,
		"qwen":     qwen,
		"kimi":     kimi,
		"doubao":   doubao,
		"gemini":   gemini,
		"claude":   claude,
	})
}

// NewManagerWithProviders builds a manager over an explicit provider set.
func NewManagerWithProviders(config Config, providers map[string]llm.Provider) *Manager {
	return &Manager{
		config:    config,
		providers: providers,
		log:       logger.Named("agent"),
	}
}

func (m *Manager) GetProvider(agentType string) llm.Provider {
	_, p := m.resolve(agentType)
	return p
}

// ProviderFor names the provider agentType resolves to.
func (m *Manager) ProviderFor(agentType string) string {
	name, _ := m.resolve(agentType)
	return name
}

// resolve returns the provider name and instance for agentType.
func (m *Manager) resolve(agentType string) (string, llm.Provider) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 1. Check for agent-specific override
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return agentConfig.Provider, p
		}
	}

	// 2. Use global active provider
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return m.config.ActiveProvider, p
	}

	// 3. Fallback
	return defaultProvider, m.providers[defaultProvider]
}

// GetProviderByName retrieves a provider instance by its specific name (e.g. "deepseek", "gemini")
func (m *Manager) GetProviderByName(name string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providers[name]
}

// ExecutePrompt handles instruction adaptation before sending to the model
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	name, provider := m.resolve(agentType)
	if provider == nil {
		return "", fmt.Errorf("no provider available for agent %s", agentType)
	}

	m.log.Debug("executing prompt",
		zap.String("agent", agentType),
		zap.String("provider", name),
		zap.Int("prompt_chars", len(rawPrompt)))

	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, options)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	m.log.Info("global provider set", zap.String("provider", newProvider))
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// ProviderNames lists the registered providers in name order.
func (m *Manager) ProviderNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
