package meter

import (
	"log/slog"

	"github.com/ineyio/llmselector"
)

// LogMeter logs selection events using slog.
type LogMeter struct {
	Logger *slog.Logger
}

var _ llmselector.Meter = (*LogMeter)(nil)

// NewLogMeter creates a LogMeter with the given logger.
// If logger is nil, slog.Default() is used.
func NewLogMeter(logger *slog.Logger) *LogMeter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMeter{Logger: logger}
}

func (m *LogMeter) OnSelect(e llmselector.SelectEvent) {
	if e.Fallback {
		m.Logger.Warn("select_fallback",
			"id", e.ID,
			"index", e.Index,
			"model", e.Model,
			"estimated_tokens", e.EstimatedTokens,
			"exact_tokens", e.ExactTokens,
			"streaming", e.Streaming,
		)
		return
	}
	m.Logger.Info("select",
		"id", e.ID,
		"index", e.Index,
		"model", e.Model,
		"estimated_tokens", e.EstimatedTokens,
		"exact_tokens", e.ExactTokens,
		"exact_pass", e.ExactPass,
		"streaming", e.Streaming,
		"cache_hit", e.CacheHit,
	)
}
