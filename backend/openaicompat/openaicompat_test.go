package openaicompat_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ineyio/llmselector"
	"github.com/ineyio/llmselector/backend/mock"
	"github.com/ineyio/llmselector/backend/openaicompat"
)

func TestFactory(t *testing.T) {
	temp := 0.2

	t.Run("default provider", func(t *testing.T) {
		b, err := openaicompat.Factory(llmselector.RuleConfig{Model: "gpt-4", APIKey: "sk-1", Temperature: &temp})
		require.NoError(t, err)

		ob := b.(*openaicompat.Backend)
		assert.Equal(t, "openai", ob.Provider())
		assert.Equal(t, "https://api.openai.com/v1/chat/completions", ob.Endpoint())
		assert.Equal(t, "sk-1", ob.APIKey())
		assert.Equal(t, "gpt-4", ob.ModelName())
		assert.Zero(t, ob.MaxTokens())
		assert.NotNil(t, ob.Tokenizer())
	})

	t.Run("known provider", func(t *testing.T) {
		b, err := openaicompat.Factory(llmselector.RuleConfig{Provider: "grok", Model: "grok-2", MaxTokens: 131072})
		require.NoError(t, err)
		assert.Equal(t, "https://api.x.ai/v1/chat/completions", b.(*openaicompat.Backend).Endpoint())
		assert.Equal(t, 131072, b.MaxTokens())
	})

	t.Run("custom base url", func(t *testing.T) {
		b, err := openaicompat.Factory(llmselector.RuleConfig{
			Provider: "ollama",
			BaseURL:  "http://localhost:11434/v1/",
			Model:    "llama3",
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:11434/v1/chat/completions", b.(*openaicompat.Backend).Endpoint())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := openaicompat.Factory(llmselector.RuleConfig{Provider: "ollama", Model: "llama3"})
		assert.ErrorContains(t, err, "requires base_url")
	})
}

func TestBackend_StreamingClone(t *testing.T) {
	b := openaicompat.NewCerebras("llama3.1-8b", openaicompat.WithTokenizer(&mock.Tokenizer{}))

	clone := b.StreamingClone().(*openaicompat.Backend)
	assert.True(t, clone.Streaming())
	assert.False(t, b.Streaming())
	assert.Equal(t, b.ModelName(), clone.ModelName())
	assert.Equal(t, b.Endpoint(), clone.Endpoint())
	assert.Same(t, b.Tokenizer(), clone.Tokenizer())
}

func TestBackend_RequestBody(t *testing.T) {
	b := openaicompat.NewOpenAI("gpt-4",
		openaicompat.WithTemperature(0),
		openaicompat.WithTopP(0.9),
		openaicompat.WithTokenizer(&mock.Tokenizer{}),
	)

	t.Run("text prompt", func(t *testing.T) {
		data, err := b.RequestBody(llmselector.TextPrompt("hello"), nil, 0)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"model": "gpt-4",
			"messages": [{"role": "user", "content": "hello"}],
			"temperature": 0,
			"top_p": 0.9
		}`, string(data))
	})

	t.Run("chat prompt with functions", func(t *testing.T) {
		functions := []llmselector.FunctionSchema{{Name: "lookup", Parameters: map[string]any{"type": "object"}}}
		prompt := llmselector.MessagesPrompt(
			llmselector.Message{Role: "system", Content: "be brief"},
			llmselector.Message{Role: "user", Content: "hi", Name: "bob"},
		)

		data, err := b.StreamingClone().(*openaicompat.Backend).RequestBody(prompt, functions, 256)
		require.NoError(t, err)

		var req map[string]any
		require.NoError(t, json.Unmarshal(data, &req))
		assert.Equal(t, true, req["stream"])
		assert.EqualValues(t, 256, req["max_tokens"])
		assert.Len(t, req["messages"], 2)
		assert.Len(t, req["functions"], 1)

		msgs := req["messages"].([]any)
		assert.Equal(t, "bob", msgs[1].(map[string]any)["name"])
		assert.NotContains(t, msgs[0].(map[string]any), "name")
	})
}

func TestDefaultSelector(t *testing.T) {
	s, err := openaicompat.DefaultSelector("sk-test")
	require.NoError(t, err)

	rules := s.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, openaicompat.DefaultModel, rules[0].Backend.ModelName())
	assert.Equal(t, 4096, rules[0].MaxTokens)
	assert.Equal(t, openaicompat.DefaultBigModel, rules[1].Backend.ModelName())
	assert.Equal(t, 16384, rules[1].MaxTokens)

	// Short prompts stay on the fast path and never load an encoding.
	b, err := s.Select(llmselector.Request{Prompt: llmselector.TextPrompt("hello")})
	require.NoError(t, err)
	assert.Equal(t, openaicompat.DefaultModel, b.ModelName())
	assert.Equal(t, "sk-test", b.(*openaicompat.Backend).APIKey())
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("network disabled")
}

func TestDefaultSelector_LargePromptUsesBigModel(t *testing.T) {
	orig := http.DefaultTransport
	http.DefaultTransport = failingTransport{}
	t.Cleanup(func() { http.DefaultTransport = orig })
	t.Setenv("TIKTOKEN_CACHE_DIR", t.TempDir())

	s, err := openaicompat.DefaultSelector("sk-test")
	require.NoError(t, err)

	// ~10k characters estimate well past 4096, so the real tokenizer decides.
	req := llmselector.Request{
		Prompt:                   llmselector.TextPrompt(strings.Repeat("hello world ", 850)),
		ExpectedGenerationTokens: 3000,
	}
	total, err := s.TotalTokens(req, true)
	require.NoError(t, err)
	assert.Greater(t, total, 4096)

	b, err := s.Select(req)
	require.NoError(t, err)
	assert.Equal(t, openaicompat.DefaultBigModel, b.ModelName())

	short, err := s.Select(llmselector.Request{
		Prompt:                   llmselector.TextPrompt(strings.Repeat("hello world ", 850)),
		ExpectedGenerationTokens: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, openaicompat.DefaultModel, short.ModelName())
}
