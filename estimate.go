package llmselector

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"
)

// CharsPerToken is the character-to-token ratio used by the fast estimate.
// It deliberately over-counts compared to real tokenizers (~4 chars/token).
const CharsPerToken = 2

// DefaultGenerationRatio assumes the response is about a third as long as the prompt.
const DefaultGenerationRatio = 1.0 / 3

// EstimateTokens approximates the token count of a prompt plus function schemas
// without calling a tokenizer. Chat prompts are measured in their JSON form.
func EstimateTokens(p Prompt, functions []FunctionSchema) (int, error) {
	var tokens int
	if p.IsChat() {
		data, err := json.Marshal(p.Messages)
		if err != nil {
			return 0, fmt.Errorf("llmselector: serialize messages: %w", err)
		}
		tokens = estimateText(string(data))
	} else {
		tokens = estimateText(p.Text)
	}

	if len(functions) > 0 {
		data, err := marshalFunctions(functions)
		if err != nil {
			return 0, err
		}
		tokens += estimateText(data)
	}
	return tokens, nil
}

// ExactTokens counts the tokens of a prompt plus function schemas with tok.
// Tokenizer errors are returned unchanged.
func ExactTokens(tok Tokenizer, p Prompt, functions []FunctionSchema) (int, error) {
	if tok == nil {
		return 0, ErrNoTokenizer
	}

	var (
		tokens int
		err    error
	)
	if p.IsChat() {
		tokens, err = tok.CountMessages(p.Messages)
	} else {
		tokens, err = tok.CountText(p.Text)
	}
	if err != nil {
		return 0, err
	}

	if len(functions) > 0 {
		data, err := marshalFunctions(functions)
		if err != nil {
			return 0, err
		}
		n, err := tok.CountText(data)
		if err != nil {
			return 0, err
		}
		tokens += n
	}
	return tokens, nil
}

// generationTokens resolves the expected generation cost of a request.
// An explicit expectation wins, then the configured floor; only when
// neither is set is the ratio applied to the prompt size.
func generationTokens(promptTokens, expected, floor int, ratio float64) int {
	if expected <= 0 {
		expected = floor
	}
	if expected > 0 {
		return expected
	}
	if ratio <= 0 {
		return 0
	}
	return int(math.Ceil(float64(promptTokens) * ratio))
}

func estimateText(s string) int {
	return utf8.RuneCountInString(s) / CharsPerToken
}

func marshalFunctions(functions []FunctionSchema) (string, error) {
	data, err := json.Marshal(functions)
	if err != nil {
		return "", fmt.Errorf("llmselector: serialize function schemas: %w", err)
	}
	return string(data), nil
}
