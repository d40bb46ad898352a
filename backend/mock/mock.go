package mock

import (
	"sync/atomic"
	"unicode/utf8"

	"github.com/ineyio/llmselector"
)

// Backend is a mock backend handle for testing.
type Backend struct {
	model      string
	maxTokens  int
	streaming  bool
	tokenizer  *Tokenizer
	cloneCount *atomic.Int64
}

var _ llmselector.Backend = (*Backend)(nil)

// Option configures a mock Backend.
type Option func(*Backend)

// New creates a mock backend for model with the given options.
// The default tokenizer counts one token per four characters.
func New(model string, opts ...Option) *Backend {
	b := &Backend{
		model:      model,
		tokenizer:  &Tokenizer{},
		cloneCount: new(atomic.Int64),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithMaxTokens sets the declared context window.
func WithMaxTokens(n int) Option {
	return func(b *Backend) { b.maxTokens = n }
}

// WithTokenizer sets the tokenizer. A nil tokenizer disables exact counting.
func WithTokenizer(t *Tokenizer) Option {
	return func(b *Backend) { b.tokenizer = t }
}

// WithFixedTokens makes every counted text (and every message) n tokens long.
func WithFixedTokens(n int) Option {
	return func(b *Backend) {
		b.tokenizer = &Tokenizer{TextFunc: func(string) int { return n }}
	}
}

func (b *Backend) ModelName() string { return b.model }

func (b *Backend) MaxTokens() int { return b.maxTokens }

func (b *Backend) Tokenizer() llmselector.Tokenizer {
	if b.tokenizer == nil {
		return nil
	}
	return b.tokenizer
}

// StreamingClone returns a copy with streaming enabled. Clones share the
// clone counter of the backend they were made from.
func (b *Backend) StreamingClone() llmselector.Backend {
	b.cloneCount.Add(1)
	clone := *b
	clone.streaming = true
	return &clone
}

// IsStreaming reports whether this handle is a streaming variant.
func (b *Backend) IsStreaming() bool { return b.streaming }

// CloneCount returns the number of streaming clones made.
func (b *Backend) CloneCount() int64 { return b.cloneCount.Load() }

// Tokenizer is a configurable mock tokenizer.
type Tokenizer struct {
	// TextFunc counts a text. Defaults to one token per four characters.
	TextFunc func(text string) int

	// MessageOverhead is added per message by CountMessages.
	MessageOverhead int

	// Err is returned by every call when set.
	Err error

	calls atomic.Int64
}

func (t *Tokenizer) CountText(text string) (int, error) {
	t.calls.Add(1)
	if t.Err != nil {
		return 0, t.Err
	}
	return t.count(text), nil
}

func (t *Tokenizer) CountMessages(messages []llmselector.Message) (int, error) {
	t.calls.Add(1)
	if t.Err != nil {
		return 0, t.Err
	}
	var total int
	for _, m := range messages {
		total += t.count(m.Content) + t.MessageOverhead
	}
	return total, nil
}

// Calls returns the number of counting calls made.
func (t *Tokenizer) Calls() int64 { return t.calls.Load() }

func (t *Tokenizer) count(text string) int {
	if t.TextFunc != nil {
		return t.TextFunc(text)
	}
	return utf8.RuneCountInString(text) / 4
}
