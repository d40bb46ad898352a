package openaicompat

import "github.com/ineyio/llmselector"

// Default models of the two-tier selector. Both support function calling.
const (
	DefaultModel    = "gpt-3.5-turbo-0613"
	DefaultBigModel = "gpt-3.5-turbo-16k-0613"
)

// DefaultSelector builds a selector that uses DefaultModel for ordinary
// prompts and DefaultBigModel once they outgrow it. Both run at temperature 0.
func DefaultSelector(apiKey string, opts ...llmselector.Option) (*llmselector.Selector, error) {
	s := llmselector.NewSelector(opts...)
	for _, model := range []string{DefaultModel, DefaultBigModel} {
		if err := s.AddBackend(NewOpenAI(model, WithAPIKey(apiKey), WithTemperature(0))); err != nil {
			return nil, err
		}
	}
	return s, nil
}
