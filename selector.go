package llmselector

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Selector picks the smallest backend whose context window fits a request.
//
// Rules are kept sorted by ascending MaxTokens. Select first estimates the
// request size cheaply; only when the estimate does not clearly fit the
// smallest rule is the exact tokenizer consulted. Requests that exceed every
// rule go to the largest backend rather than failing.
//
// A Selector is safe for concurrent use.
type Selector struct {
	mu    sync.RWMutex
	table RuleTable
	first Backend // first registered backend, used as the representative tokenizer

	streamMu  sync.Mutex
	streaming map[int]Backend // rule ID -> streaming clone

	minGeneration int
	ratio         float64
	tokenizer     Tokenizer
	windows       ContextWindows
	logger        *slog.Logger
	meter         Meter
}

// Option configures a Selector.
type Option func(*Selector)

// WithMinGenerationTokens sets the generation floor used when a request
// carries no expectation of its own. Zero disables the floor.
func WithMinGenerationTokens(n int) Option {
	return func(s *Selector) { s.minGeneration = n }
}

// WithGenerationRatio sets the prompt-to-generation ratio used when neither an
// expectation nor a floor is available. Defaults to DefaultGenerationRatio.
func WithGenerationRatio(r float64) Option {
	return func(s *Selector) { s.ratio = r }
}

// WithTokenizer overrides the tokenizer used for exact counting. By default
// the first registered backend's tokenizer is used for every request, which is
// an approximation when rules mix model families.
func WithTokenizer(t Tokenizer) Option {
	return func(s *Selector) { s.tokenizer = t }
}

// WithContextWindows adds patterns checked before DefaultContextWindows by AddBackend.
func WithContextWindows(w ContextWindows) Option {
	return func(s *Selector) { s.windows = append(s.windows, w...) }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMeter sets the meter.
func WithMeter(m Meter) Option {
	return func(s *Selector) {
		if m != nil {
			s.meter = m
		}
	}
}

// NewSelector creates an empty Selector. At least one rule must be added
// before Select is called.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		streaming: make(map[int]Backend),
		ratio:     DefaultGenerationRatio,
		logger:    slog.Default(),
		meter:     &noopMeter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRule registers b for requests of up to maxTokens total tokens.
func (s *Selector) AddRule(b Backend, maxTokens int) error {
	if b == nil {
		return &ConfigurationError{Op: "add rule", Err: ErrNilBackend}
	}
	if maxTokens <= 0 {
		return &ConfigurationError{Op: "add rule", Model: b.ModelName(), Err: ErrInvalidThreshold}
	}

	s.mu.Lock()
	pos, rule := s.table.Add(b, maxTokens)
	if s.first == nil {
		s.first = b
	}
	s.mu.Unlock()

	s.logger.Debug("llmselector: rule added",
		"model", b.ModelName(),
		"max_tokens", maxTokens,
		"index", pos,
		"rule_id", rule.ID,
	)
	return nil
}

// AddBackend registers b using its declared context window, or the window of
// the first matching known model pattern. Returns a ConfigurationError wrapping
// ErrUnknownModel when neither is available; use AddRule instead.
func (s *Selector) AddBackend(b Backend) error {
	if b == nil {
		return &ConfigurationError{Op: "add backend", Err: ErrNilBackend}
	}

	maxTokens := b.MaxTokens()
	if maxTokens <= 0 {
		var ok bool
		maxTokens, ok = s.ContextWindow(b.ModelName())
		if !ok {
			return &ConfigurationError{Op: "add backend", Model: b.ModelName(), Err: ErrUnknownModel}
		}
	}
	return s.AddRule(b, maxTokens)
}

// ContextWindow resolves a model name against the selector's own patterns,
// then DefaultContextWindows.
func (s *Selector) ContextWindow(model string) (int, bool) {
	if n, ok := s.windows.Lookup(model); ok {
		return n, true
	}
	return LookupContextWindow(model)
}

// Rules returns the current rules in ascending threshold order.
func (s *Selector) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Rules()
}

// Len returns the number of registered rules.
func (s *Selector) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Len()
}

// TokenCount counts the prompt and function schemas, either with the fast
// estimate or with the representative tokenizer.
func (s *Selector) TokenCount(p Prompt, functions []FunctionSchema, exact bool) (int, error) {
	s.mu.RLock()
	tok := s.representativeTokenizer()
	s.mu.RUnlock()
	return countTokens(tok, p, functions, exact)
}

// TotalTokens returns the prompt size plus the expected generation cost.
func (s *Selector) TotalTokens(req Request, exact bool) (int, error) {
	s.mu.RLock()
	tok := s.representativeTokenizer()
	s.mu.RUnlock()
	return s.totalTokens(tok, req, exact)
}

// Select returns the backend for req. It fails only when no rules are
// registered or when counting fails.
func (s *Selector) Select(req Request) (Backend, error) {
	// Counting may be slow, so work on a snapshot and never hold mu while
	// the tokenizer runs.
	s.mu.RLock()
	table := RuleTable{rules: s.table.Rules()}
	tok := s.representativeTokenizer()
	s.mu.RUnlock()

	if table.Len() == 0 {
		return nil, &ConfigurationError{Op: "select", Err: ErrNoRules}
	}

	event := SelectEvent{Streaming: req.Streaming}

	estimated, err := s.totalTokens(tok, req, false)
	if err != nil {
		return nil, err
	}
	event.EstimatedTokens = estimated

	pos, covered := 0, true
	if estimated >= table.At(0).MaxTokens {
		exact, err := s.totalTokens(tok, req, true)
		if err != nil {
			return nil, err
		}
		event.ExactTokens = exact
		event.ExactPass = true
		pos, covered = table.Cover(exact)
	}
	rule := table.At(pos)

	event.ID = uuid.New().String()
	event.Index = pos
	event.RuleID = rule.ID
	event.Model = rule.Backend.ModelName()
	event.Fallback = !covered

	if event.Fallback {
		s.logger.Warn("llmselector: request exceeds every rule, using largest backend",
			"model", event.Model,
			"max_tokens", rule.MaxTokens,
			"exact_tokens", event.ExactTokens,
		)
	}

	b := rule.Backend
	if req.Streaming {
		b, event.CacheHit = s.streamingVariant(rule)
	}

	s.logger.Debug("llmselector: selected backend",
		"selection_id", event.ID,
		"index", event.Index,
		"rule_id", event.RuleID,
		"model", event.Model,
		"estimated_tokens", event.EstimatedTokens,
		"exact_tokens", event.ExactTokens,
		"streaming", event.Streaming,
	)
	s.meter.OnSelect(event)

	return b, nil
}

// streamingVariant returns the cached streaming clone for rule, creating it on
// first use. Clones are never evicted.
func (s *Selector) streamingVariant(rule Rule) (Backend, bool) {
	s.streamMu.Lock()
	defer s.streamMu.Unlock()

	if b, ok := s.streaming[rule.ID]; ok {
		return b, true
	}
	b := rule.Backend.StreamingClone()
	s.streaming[rule.ID] = b
	return b, false
}

// representativeTokenizer must be called with mu held.
func (s *Selector) representativeTokenizer() Tokenizer {
	if s.tokenizer != nil {
		return s.tokenizer
	}
	if s.first == nil {
		return nil
	}
	return s.first.Tokenizer()
}

func (s *Selector) totalTokens(tok Tokenizer, req Request, exact bool) (int, error) {
	prompt, err := countTokens(tok, req.Prompt, req.Functions, exact)
	if err != nil {
		return 0, err
	}
	return prompt + generationTokens(prompt, req.ExpectedGenerationTokens, s.minGeneration, s.ratio), nil
}

func countTokens(tok Tokenizer, p Prompt, functions []FunctionSchema, exact bool) (int, error) {
	if exact {
		return ExactTokens(tok, p, functions)
	}
	return EstimateTokens(p, functions)
}
