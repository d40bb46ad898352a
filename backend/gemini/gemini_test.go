package gemini_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ineyio/llmselector"
	"github.com/ineyio/llmselector/backend/gemini"
	"github.com/ineyio/llmselector/backend/mock"
)

func TestBackend_Endpoint(t *testing.T) {
	b := gemini.New("gemini-1.5-flash", gemini.WithAPIKey("k1"), gemini.WithTokenizer(&mock.Tokenizer{}))

	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent?key=k1",
		b.Endpoint())

	clone := b.StreamingClone().(*gemini.Backend)
	assert.True(t, clone.Streaming())
	assert.False(t, b.Streaming())
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:streamGenerateContent?alt=sse&key=k1",
		clone.Endpoint())
}

func TestBackend_RequestBody(t *testing.T) {
	b := gemini.New("gemini-1.5-pro",
		gemini.WithBaseURL("http://localhost:8080/"),
		gemini.WithTemperature(0.5),
		gemini.WithTokenizer(&mock.Tokenizer{}),
	)
	assert.Equal(t, "http://localhost:8080/models/gemini-1.5-pro:generateContent", b.Endpoint())

	prompt := llmselector.MessagesPrompt(
		llmselector.Message{Role: "system", Content: "be brief"},
		llmselector.Message{Role: "user", Content: "hi"},
		llmselector.Message{Role: "assistant", Content: "hello"},
	)
	functions := []llmselector.FunctionSchema{{Name: "lookup"}}

	data, err := b.RequestBody(prompt, functions, 128)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"systemInstruction": {"parts": [{"text": "be brief"}]},
		"contents": [
			{"role": "user", "parts": [{"text": "hi"}]},
			{"role": "model", "parts": [{"text": "hello"}]}
		],
		"tools": [{"functionDeclarations": [{"name": "lookup"}]}],
		"generationConfig": {"temperature": 0.5, "maxOutputTokens": 128}
	}`, string(data))
}

func TestBackend_RequestBodyText(t *testing.T) {
	b := gemini.New("gemini-1.5-pro", gemini.WithTokenizer(&mock.Tokenizer{}))

	data, err := b.RequestBody(llmselector.TextPrompt("hello"), nil, 0)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(data, &req))
	assert.NotContains(t, req, "generationConfig")
	assert.NotContains(t, req, "systemInstruction")
	assert.Len(t, req["contents"], 1)
}

func TestFactory(t *testing.T) {
	b, err := gemini.Factory(llmselector.RuleConfig{Provider: "gemini", Model: "gemini-2.0-flash", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", b.ModelName())
	assert.Zero(t, b.MaxTokens())

	_, err = gemini.Factory(llmselector.RuleConfig{Provider: "openai", Model: "gpt-4"})
	assert.Error(t, err)

	// Gemini models resolve their window from the default table.
	s := llmselector.NewSelector()
	require.NoError(t, s.AddBackend(b))
	assert.Equal(t, 1_048_576, s.Rules()[0].MaxTokens)
}
