// Package gemini describes Google Gemini models as selectable backends.
package gemini

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ineyio/llmselector"
	"github.com/ineyio/llmselector/tokenizer/tiktoken"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Backend is a handle to a Gemini model. Gemini has no offline tokenizer, so
// exact counts use tiktoken's fallback encoding as an approximation.
type Backend struct {
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

// WithBaseURL sets a custom base URL.
func WithBaseURL(u string) Option {
	return func(b *Backend) { b.baseURL = strings.TrimRight(u, "/") }
}

// WithAPIKey sets the key passed in the query string.
func WithAPIKey(key string) Option {
	return func(b *Backend) { b.apiKey = key }
}

// WithMaxTokens declares the model's context window.
func WithMaxTokens(n int) Option {
	return func(b *Backend) { b.maxTokens = n }
}

func WithTemperature(t float64) Option {
	return func(b *Backend) { b.temperature = &t }
}

func WithTopP(p float64) Option {
	return func(b *Backend) { b.topP = &p }
}

// WithTokenizer replaces the approximate tokenizer.
func WithTokenizer(t llmselector.Tokenizer) Option {
	return func(b *Backend) { b.tokenizer = t }
}

// New creates a Gemini backend for model.
func New(model string, opts ...Option) *Backend {
	b := &Backend{
		baseURL: defaultBaseURL,
		model:   model,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.tokenizer == nil {
		b.tokenizer = tiktoken.New(model)
	}
	return b
}

// Factory builds a Gemini backend from rule configuration.
func Factory(rc llmselector.RuleConfig) (llmselector.Backend, error) {
	if rc.Provider != "" && rc.Provider != "gemini" {
		return nil, fmt.Errorf("gemini: unexpected provider %q", rc.Provider)
	}

	var opts []Option
	if rc.BaseURL != "" {
		opts = append(opts, WithBaseURL(rc.BaseURL))
	}
	if rc.APIKey != "" {
		opts = append(opts, WithAPIKey(rc.APIKey))
	}
	if rc.MaxTokens > 0 {
		opts = append(opts, WithMaxTokens(rc.MaxTokens))
	}
	if rc.Temperature != nil {
		opts = append(opts, WithTemperature(*rc.Temperature))
	}
	return New(rc.Model, opts...), nil
}

func (b *Backend) ModelName() string { return b.model }

func (b *Backend) MaxTokens() int { return b.maxTokens }

func (b *Backend) Tokenizer() llmselector.Tokenizer { return b.tokenizer }

// StreamingClone returns a copy that targets the SSE streaming endpoint.
func (b *Backend) StreamingClone() llmselector.Backend {
	clone := *b
	clone.stream = true
	return &clone
}

// Streaming reports whether this handle targets the streaming endpoint.
func (b *Backend) Streaming() bool { return b.stream }

// Endpoint returns the URL requests for this handle are posted to.
func (b *Backend) Endpoint() string {
	q := url.Values{}
	method := "generateContent"
	if b.stream {
		method = "streamGenerateContent"
		q.Set("alt", "sse")
	}
	if b.apiKey != "" {
		q.Set("key", b.apiKey)
	}

	endpoint := fmt.Sprintf("%s/models/%s:%s", b.baseURL, b.model, method)
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	return endpoint
}

// Gemini API types.
type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	FunctionDeclarations []llmselector.FunctionSchema `json:"functionDeclarations"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
}

// RequestBody encodes the generateContent payload for p. System messages
// become the system instruction and assistant turns use the "model" role.
func (b *Backend) RequestBody(p llmselector.Prompt, functions []llmselector.FunctionSchema, maxGeneration int) ([]byte, error) {
	var gr geminiRequest

	if !p.IsChat() {
		gr.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: p.Text}}}}
	}
	for _, m := range p.Messages {
		switch m.Role {
		case "system":
			if gr.SystemInstruction == nil {
				gr.SystemInstruction = &geminiContent{}
			}
			gr.SystemInstruction.Parts = append(gr.SystemInstruction.Parts, geminiPart{Text: m.Content})
		case "assistant":
			gr.Contents = append(gr.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			gr.Contents = append(gr.Contents, geminiContent{Role: m.Role, Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	if gr.Contents == nil {
		gr.Contents = []geminiContent{}
	}

	if len(functions) > 0 {
		gr.Tools = []geminiTool{{FunctionDeclarations: functions}}
	}

	if b.temperature != nil || b.topP != nil || maxGeneration > 0 {
		gr.GenerationConfig = &geminiGenerationConfig{
			Temperature: b.temperature,
			TopP:        b.topP,
		}
		if maxGeneration > 0 {
			gr.GenerationConfig.MaxOutputTokens = &maxGeneration
		}
	}

	data, err := json.Marshal(gr)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}
	return data, nil
}
