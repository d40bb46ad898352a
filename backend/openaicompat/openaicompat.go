package openaicompat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ineyio/llmselector"
	"github.com/ineyio/llmselector/tokenizer/tiktoken"
)

// Backend is a handle to an OpenAI-compatible chat endpoint.
// Works with OpenAI, Grok/xAI, Cerebras, Together, Ollama, and others.
// It only describes the endpoint; sending requests is up to the caller.
type Backend struct {
	provider    string
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature *float64
	topP        *float64
	stream      bool
	tokenizer   llmselector.Tokenizer
}

var _ llmselector.Backend = (*Backend)(nil)

// Option configures the backend.
type Option func(*Backend)

// WithAPIKey sets the bearer token sent to the endpoint.
func WithAPIKey(key string) Option {
	return func(b *Backend) { b.apiKey = key }
}

// WithMaxTokens declares the model's context window. Without it the window
// is resolved from the model name.
func WithMaxTokens(n int) Option {
	return func(b *Backend) { b.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(b *Backend) { b.temperature = &t }
}

// WithTopP sets nucleus sampling.
func WithTopP(p float64) Option {
	return func(b *Backend) { b.topP = &p }
}

// WithTokenizer replaces the default tiktoken tokenizer.
func WithTokenizer(t llmselector.Tokenizer) Option {
	return func(b *Backend) { b.tokenizer = t }
}

// New creates a backend for model served by an OpenAI-compatible API.
func New(provider, baseURL, model string, opts ...Option) *Backend {
	b := &Backend{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.tokenizer == nil {
		b.tokenizer = tiktoken.New(model)
	}
	return b
}

// NewOpenAI creates a backend for an OpenAI model.
func NewOpenAI(model string, opts ...Option) *Backend {
	return New("openai", baseURLs["openai"], model, opts...)
}

// NewGrok creates a backend for a Grok/xAI model.
func NewGrok(model string, opts ...Option) *Backend {
	return New("grok", baseURLs["grok"], model, opts...)
}

// NewCerebras creates a backend for a Cerebras model.
func NewCerebras(model string, opts ...Option) *Backend {
	return New("cerebras", baseURLs["cerebras"], model, opts...)
}

var baseURLs = map[string]string{
	"openai":   "https://api.openai.com/v1",
	"grok":     "https://api.x.ai/v1",
	"cerebras": "https://api.cerebras.ai/v1",
}

// Factory builds backends from rule configuration. Known providers get
// their default base URL; any other provider needs base_url.
func Factory(rc llmselector.RuleConfig) (llmselector.Backend, error) {
	provider := rc.Provider
	if provider == "" {
		provider = "openai"
	}

	baseURL := rc.BaseURL
	if baseURL == "" {
		var ok bool
		baseURL, ok = baseURLs[provider]
		if !ok {
			return nil, fmt.Errorf("openaicompat: provider %q requires base_url", provider)
		}
	}

	var opts []Option
	if rc.APIKey != "" {
		opts = append(opts, WithAPIKey(rc.APIKey))
	}
	if rc.MaxTokens > 0 {
		opts = append(opts, WithMaxTokens(rc.MaxTokens))
	}
	if rc.Temperature != nil {
		opts = append(opts, WithTemperature(*rc.Temperature))
	}
	return New(provider, baseURL, rc.Model, opts...), nil
}

func (b *Backend) ModelName() string { return b.model }

func (b *Backend) MaxTokens() int { return b.maxTokens }

func (b *Backend) Tokenizer() llmselector.Tokenizer { return b.tokenizer }

// StreamingClone returns a copy of the backend with streaming enabled.
func (b *Backend) StreamingClone() llmselector.Backend {
	clone := *b
	clone.stream = true
	return &clone
}

// Provider returns the provider name (e.g. "openai").
func (b *Backend) Provider() string { return b.provider }

// Endpoint returns the chat completions URL.
func (b *Backend) Endpoint() string { return b.baseURL + "/chat/completions" }

// APIKey returns the configured API key.
func (b *Backend) APIKey() string { return b.apiKey }

// Streaming reports whether requests built by this handle ask for streamed output.
func (b *Backend) Streaming() bool { return b.stream }

// apiRequest is the OpenAI chat completion request format.
type apiRequest struct {
	Model       string                       `json:"model"`
	Messages    []apiMessage                 `json:"messages"`
	Functions   []llmselector.FunctionSchema `json:"functions,omitempty"`
	Temperature *float64                     `json:"temperature,omitempty"`
	MaxTokens   *int                         `json:"max_tokens,omitempty"`
	TopP        *float64                     `json:"top_p,omitempty"`
	Stream      bool                         `json:"stream,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// RequestBody encodes the chat completion payload this backend would send.
// A text prompt becomes a single user message. maxGeneration limits the
// response length when positive.
func (b *Backend) RequestBody(p llmselector.Prompt, functions []llmselector.FunctionSchema, maxGeneration int) ([]byte, error) {
	var msgs []apiMessage
	if p.IsChat() {
		msgs = make([]apiMessage, len(p.Messages))
		for i, m := range p.Messages {
			msgs[i] = apiMessage{Role: m.Role, Content: m.Content, Name: m.Name}
		}
	} else {
		msgs = []apiMessage{{Role: "user", Content: p.Text}}
	}

	req := apiRequest{
		Model:       b.model,
		Messages:    msgs,
		Functions:   functions,
		Temperature: b.temperature,
		TopP:        b.topP,
		Stream:      b.stream,
	}
	if maxGeneration > 0 {
		req.MaxTokens = &maxGeneration
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("openaicompat: marshal request: %w", err)
	}
	return data, nil
}
