package llmselector

// Backend is a handle to a concrete model endpoint configuration.
// Backend adapters (see backend/openaicompat) implement this interface.
type Backend interface {
	// ModelName returns the model identifier (e.g. "gpt-3.5-turbo-16k-0613").
	ModelName() string

	// MaxTokens returns the declared context window, or 0 when unknown.
	MaxTokens() int

	// Tokenizer returns the tokenizer used for exact counting. May be nil.
	Tokenizer() Tokenizer

	// StreamingClone returns a backend with the same configuration and
	// streaming output enabled.
	StreamingClone() Backend
}

// Tokenizer counts tokens exactly for a model family.
type Tokenizer interface {
	// CountText counts the tokens of a raw text prompt.
	CountText(text string) (int, error)

	// CountMessages counts the tokens of a chat prompt, including the
	// per-message framing overhead.
	CountMessages(messages []Message) (int, error)
}
