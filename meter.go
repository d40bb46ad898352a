package llmselector

// Meter observes selection decisions for monitoring/logging.
type Meter interface {
	// OnSelect is called once per successful Select.
	OnSelect(event SelectEvent)
}

// SelectEvent describes a selection decision.
type SelectEvent struct {
	ID     string
	Index  int // position in the rule table at selection time
	RuleID int
	Model  string

	EstimatedTokens int
	ExactTokens     int  // zero when the fast path was taken
	ExactPass       bool // the tokenizer was consulted

	// Fallback is set when no rule covered the request and the
	// largest backend was chosen anyway.
	Fallback  bool
	Streaming bool
	CacheHit  bool
}

// noopMeter is a meter that does nothing.
type noopMeter struct{}

func (m *noopMeter) OnSelect(SelectEvent) {}
