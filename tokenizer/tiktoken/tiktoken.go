// Package tiktoken counts tokens exactly with OpenAI BPE encodings.
package tiktoken

import (
	"fmt"
	"strings"
	"sync"

	tk "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/ineyio/llmselector"
)

// DefaultEncoding is used for models tiktoken does not know. cl100k_base is
// a reasonable approximation for other modern LLMs.
const DefaultEncoding = "cl100k_base"

func init() {
	// Encodings ship embedded in the loader module; never fetch them over HTTP.
	tk.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// loadEncoder resolves the BPE encoder for model.
var loadEncoder = func(model string) (func(string) int, error) {
	enc, err := tk.EncodingForModel(model)
	if err != nil {
		enc, err = tk.GetEncoding(DefaultEncoding)
	}
	if err != nil {
		return nil, err
	}
	// Allow all special tokens so inputs containing sequences like
	// "<|endoftext|>" are counted instead of panicking.
	return func(text string) int {
		return len(enc.Encode(text, []string{"all"}, nil))
	}, nil
}

// Tokenizer counts tokens for one model. The encoding is loaded on first use;
// a failed load is retried on the next call.
type Tokenizer struct {
	model string

	mu     sync.Mutex
	encode func(text string) int
}

var _ llmselector.Tokenizer = (*Tokenizer)(nil)

// New returns a tokenizer for model.
func New(model string) *Tokenizer {
	return &Tokenizer{model: model}
}

// newWithEncoder returns a tokenizer with a preloaded encoder.
func newWithEncoder(model string, encode func(string) int) *Tokenizer {
	return &Tokenizer{model: model, encode: encode}
}

func (t *Tokenizer) load() (func(string) int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.encode != nil {
		return t.encode, nil
	}
	encode, err := loadEncoder(t.model)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: load encoding for %q: %w", t.model, err)
	}
	t.encode = encode
	return encode, nil
}

// CountText counts the tokens of text.
func (t *Tokenizer) CountText(text string) (int, error) {
	encode, err := t.load()
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}
	return encode(text), nil
}

// CountMessages counts a chat prompt the way the chat completions API bills
// it: a fixed framing cost per message, the role, content and optional name,
// plus the tokens priming the assistant reply.
func (t *Tokenizer) CountMessages(messages []llmselector.Message) (int, error) {
	encode, err := t.load()
	if err != nil {
		return 0, err
	}

	perMessage, perName := messageOverhead(t.model)
	total := 0
	for _, m := range messages {
		total += perMessage
		total += encode(m.Role)
		total += encode(m.Content)
		if m.Name != "" {
			total += encode(m.Name) + perName
		}
	}
	total += 3 // every reply is primed with <|start|>assistant<|message|>
	return total, nil
}

// messageOverhead returns the per-message and per-name token overhead.
func messageOverhead(model string) (perMessage, perName int) {
	if strings.HasPrefix(model, "gpt-3.5-turbo-0301") {
		// role/name are merged; a name replaces the role
		return 4, -1
	}
	return 3, 1
}
