package meter

import "github.com/ineyio/llmselector"

// NoopMeter is a meter that does nothing.
type NoopMeter struct{}

var _ llmselector.Meter = (*NoopMeter)(nil)

func (m *NoopMeter) OnSelect(llmselector.SelectEvent) {}
