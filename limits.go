package llmselector

import (
	"fmt"
	"regexp"
)

// ContextWindow maps a model-name pattern to its context window in tokens.
type ContextWindow struct {
	Pattern   *regexp.Regexp
	MaxTokens int
}

// ContextWindows is an ordered pattern table. The first matching entry wins,
// so specific patterns must come before broader ones.
type ContextWindows []ContextWindow

// DefaultContextWindows contains context windows for well-known models.
var DefaultContextWindows = ContextWindows{
	{regexp.MustCompile(`^gpt-3\.5-turbo-16k`), 16_384},
	{regexp.MustCompile(`^gpt-3\.5-turbo-(0125|1106)`), 16_385},
	{regexp.MustCompile(`^gpt-3\.5-turbo`), 4_096},

	{regexp.MustCompile(`^text-davinci-003`), 4_097},
	{regexp.MustCompile(`^code-davinci-002`), 8_001},

	{regexp.MustCompile(`^gpt-4-32k`), 32_768},
	{regexp.MustCompile(`^gpt-4o`), 128_000},
	{regexp.MustCompile(`^gpt-4-turbo`), 128_000},
	{regexp.MustCompile(`^gpt-4-(0125|1106)-preview`), 128_000},
	{regexp.MustCompile(`^gpt-4\.1`), 1_047_576},
	{regexp.MustCompile(`^gpt-4`), 8_192},

	{regexp.MustCompile(`^claude-v\d(\.\d+)?-100k`), 100_000},
	{regexp.MustCompile(`^claude-v1`), 9_000},
	{regexp.MustCompile(`^claude-2`), 100_000},
	{regexp.MustCompile(`^claude-instant`), 100_000},
	{regexp.MustCompile(`^claude-3`), 200_000},
	{regexp.MustCompile(`^claude-(opus|sonnet|haiku)-4`), 200_000},

	{regexp.MustCompile(`^gemini-1\.5-pro`), 2_097_152},
	{regexp.MustCompile(`^gemini-1\.5-flash`), 1_048_576},
	{regexp.MustCompile(`^gemini-2\.`), 1_048_576},
}

// Lookup returns the context window of the first pattern matching model.
func (w ContextWindows) Lookup(model string) (int, bool) {
	for _, cw := range w {
		if cw.Pattern.MatchString(model) {
			return cw.MaxTokens, true
		}
	}
	return 0, false
}

// LookupContextWindow resolves a model name against DefaultContextWindows.
func LookupContextWindow(model string) (int, bool) {
	return DefaultContextWindows.Lookup(model)
}

// ParseContextWindow compiles a pattern into a ContextWindow.
// Patterns are anchored at the start of the model name.
func ParseContextWindow(pattern string, maxTokens int) (ContextWindow, error) {
	if maxTokens <= 0 {
		return ContextWindow{}, fmt.Errorf("%w: pattern %q", ErrInvalidThreshold, pattern)
	}
	if pattern == "" {
		return ContextWindow{}, fmt.Errorf("%w: empty context window pattern", ErrConfiguration)
	}
	if pattern[0] != '^' {
		pattern = "^(?:" + pattern + ")"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ContextWindow{}, fmt.Errorf("%w: pattern %q: %v", ErrConfiguration, pattern, err)
	}
	return ContextWindow{Pattern: re, MaxTokens: maxTokens}, nil
}
