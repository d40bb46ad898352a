package llmselector

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// Prompt is either a single text prompt or an ordered list of chat messages.
// When Messages is non-nil the prompt is treated as a chat prompt and Text is ignored.
type Prompt struct {
	Text     string
	Messages []Message
}

// TextPrompt returns a raw text prompt.
func TextPrompt(text string) Prompt {
	return Prompt{Text: text}
}

// MessagesPrompt returns a chat prompt.
func MessagesPrompt(messages ...Message) Prompt {
	if messages == nil {
		messages = []Message{}
	}
	return Prompt{Messages: messages}
}

// IsChat reports whether the prompt is a message list.
func (p Prompt) IsChat() bool {
	return p.Messages != nil
}

// FunctionSchema describes a callable function (tool) offered to the model.
// Schemas count towards the prompt size.
type FunctionSchema struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

// Request describes what the caller is about to send to a backend.
type Request struct {
	Prompt    Prompt
	Functions []FunctionSchema

	// ExpectedGenerationTokens is how many tokens the caller expects the model
	// to produce. Zero means unknown.
	ExpectedGenerationTokens int

	// Streaming asks for the streaming variant of the chosen backend.
	Streaming bool
}
