package llmselector

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the root of every configuration failure.
var ErrConfiguration = errors.New("llmselector: configuration error")

// Sentinel errors. All configuration sentinels wrap ErrConfiguration.
var (
	ErrNoRules          = fmt.Errorf("%w: no rules registered", ErrConfiguration)
	ErrUnknownModel     = fmt.Errorf("%w: no known context window for model", ErrConfiguration)
	ErrInvalidThreshold = fmt.Errorf("%w: max tokens must be positive", ErrConfiguration)
	ErrNilBackend       = fmt.Errorf("%w: backend is nil", ErrConfiguration)
	ErrNoTokenizer      = errors.New("llmselector: backend has no tokenizer")
)

// ConfigurationError wraps a configuration failure with the operation and model involved.
type ConfigurationError struct {
	Op    string
	Model string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("llmselector: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("llmselector: %s model=%s: %v", e.Op, e.Model, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError returns true if err is a fatal configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
