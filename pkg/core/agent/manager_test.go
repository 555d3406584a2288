package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filing_analyzer/pkg/core/llm"
)

type echoProvider struct {
	name string
}

func (p *echoProvider) GenerateResponse(_ context.Context, prompt, systemPrompt string, _ map[string]interface{}) (string, error) {
	return p.name + ":" + systemPrompt + ":" + prompt, nil
}

func (p *echoProvider) AdaptInstructions(raw string) string {
	return "[" + raw + "]"
}

func newTestManager(cfg Config) *Manager {
	return NewManagerWithProviders(cfg, map[string]llm.Provider{
		"openai": &echoProvider{name: "openai"},
		"gemini": &echoProvider{name: "gemini"},
		"claude": &echoProvider{name: "claude"},
	})
}

func TestProviderResolution(t *testing.T) {
	m := newTestManager(Config{
		ActiveProvider: "gemini",
		Agents: map[string]AgentConfig{
			AgentAnalysis: {Provider: "claude"},
			"broken":      {Provider: "missing"},
		},
	})

	out, err := m.ExecutePrompt(context.Background(), AgentAnalysis, "p", "s", nil)
	require.NoError(t, err)
	assert.Equal(t, "claude:[s]:p", out)
	assert.Equal(t, "claude", m.ProviderFor(AgentAnalysis))
	assert.Equal(t, "gemini", m.ProviderFor("broken"))

	out, err = m.ExecutePrompt(context.Background(), "broken", "p", "s", nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini:[s]:p", out)

	m = newTestManager(Config{ActiveProvider: "unknown"})
	out, err = m.ExecutePrompt(context.Background(), AgentAnalysis, "p", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "openai:[]:p", out)
}

func TestSetGlobalProvider(t *testing.T) {
	m := newTestManager(Config{ActiveProvider: "openai"})

	require.NoError(t, m.SetGlobalProvider("gemini"))
	assert.Equal(t, "gemini", m.GetActiveProvider())

	assert.Error(t, m.SetGlobalProvider("nope"))
	assert.Equal(t, "gemini", m.GetActiveProvider())

	assert.Equal(t, []string{"claude", "gemini", "openai"}, m.ProviderNames())
	assert.Nil(t, m.GetProviderByName("nope"))
}

func TestConcurrentSwitch(t *testing.T) {
	m := newTestManager(Config{ActiveProvider: "openai"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				m.SetGlobalProvider("gemini")
			} else {
				m.SetGlobalProvider("openai")
			}
		}(i)
		go func() {
			defer wg.Done()
			_, err := m.ExecutePrompt(context.Background(), AgentAnalysis, "p", "", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Contains(t, []string{"gemini", "openai"}, m.GetActiveProvider())
}

func TestNewManagerModels(t *testing.T) {
	m := NewManager(Config{
		ActiveProvider: "deepseek",
		Models:         map[string]string{"deepseek": "deepseek-reasoner", "gemini": "gemini-2.5-pro"},
	})

	ds, ok := m.GetProviderByName("deepseek").(*llm.ChatCompletionsProvider)
	require.True(t, ok)
	assert.Equal(t, "deepseek-reasoner", ds.Model)

	gm, ok := m.GetProviderByName("gemini").(*llm.GeminiProvider)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.5-pro", gm.Model)

	assert.Len(t, m.ProviderNames(), 7)
}
