package llmselector_test

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sel "github.com/ineyio/llmselector"
	"github.com/ineyio/llmselector/backend/mock"
)

func TestEstimateTokens_Text(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 0},
		{"abcd", 2},
		{"héllo wörld", 5}, // 11 runes
		{strings.Repeat("x", 1001), 500},
	}
	for _, tt := range tests {
		got, err := sel.EstimateTokens(sel.TextPrompt(tt.text), nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "text=%q", tt.text)
	}
}

func TestEstimateTokens_Monotonic(t *testing.T) {
	prev := -1
	for n := 0; n < 300; n++ {
		text := sel.TextPrompt(strings.Repeat("ab", n))
		got, err := sel.EstimateTokens(text, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev)
		prev = got

		chat := sel.MessagesPrompt(sel.Message{Role: "user", Content: strings.Repeat("ab", n)})
		chatTokens, err := sel.EstimateTokens(chat, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, chatTokens, got)
	}
}

func TestEstimateTokens_ChatUsesJSONForm(t *testing.T) {
	msgs := []sel.Message{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "Hi there", Name: "bob"},
	}
	data, err := json.Marshal(msgs)
	require.NoError(t, err)

	got, err := sel.EstimateTokens(sel.MessagesPrompt(msgs...), nil)
	require.NoError(t, err)
	assert.Equal(t, utf8.RuneCount(data)/2, got)
}

func TestEstimateTokens_AddsFunctions(t *testing.T) {
	functions := []sel.FunctionSchema{
		{Name: "get_weather", Description: "Current weather", Parameters: map[string]any{"type": "object"}},
	}
	data, err := json.Marshal(functions)
	require.NoError(t, err)

	got, err := sel.EstimateTokens(sel.TextPrompt("abcd"), functions)
	require.NoError(t, err)
	assert.Equal(t, 2+len(data)/2, got)
}

func TestEstimateTokens_UnserializableFunction(t *testing.T) {
	functions := []sel.FunctionSchema{{Name: "bad", Parameters: make(chan int)}}

	_, err := sel.EstimateTokens(sel.TextPrompt("abcd"), functions)
	assert.Error(t, err)
}

func TestExactTokens(t *testing.T) {
	tok := &mock.Tokenizer{TextFunc: func(text string) int { return len(text) }}

	t.Run("text", func(t *testing.T) {
		got, err := sel.ExactTokens(tok, sel.TextPrompt("abc"), nil)
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("messages", func(t *testing.T) {
		got, err := sel.ExactTokens(tok, sel.MessagesPrompt(
			sel.Message{Role: "user", Content: "ab"},
			sel.Message{Role: "assistant", Content: "cde"},
		), nil)
		require.NoError(t, err)
		assert.Equal(t, 5, got)
	})

	t.Run("functions", func(t *testing.T) {
		functions := []sel.FunctionSchema{{Name: "f"}}
		data, err := json.Marshal(functions)
		require.NoError(t, err)

		got, err := sel.ExactTokens(tok, sel.TextPrompt("abc"), functions)
		require.NoError(t, err)
		assert.Equal(t, 3+len(data), got)
	})

	t.Run("nil tokenizer", func(t *testing.T) {
		_, err := sel.ExactTokens(nil, sel.TextPrompt("abc"), nil)
		assert.ErrorIs(t, err, sel.ErrNoTokenizer)
	})
}

func TestPrompt_IsChat(t *testing.T) {
	assert.False(t, sel.TextPrompt("hi").IsChat())
	assert.True(t, sel.MessagesPrompt().IsChat())
	assert.True(t, sel.MessagesPrompt(sel.Message{Role: "user", Content: "hi"}).IsChat())
}

func TestDefaultGenerationRatio(t *testing.T) {
	assert.InDelta(t, 1.0/3, sel.DefaultGenerationRatio, 1e-12)
}
