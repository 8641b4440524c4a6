package pipeline

import (
	"time"
)

// Config holds the pipeline execution configuration. Loads read local CSVs,
// so there is no retry policy: a failed step fails the operation.
type Config struct {
	// StepTimeouts bounds each step's execution, keyed by step ID.
	StepTimeouts map[string]time.Duration

	// DefaultStepTimeout applies to steps without an explicit entry.
	DefaultStepTimeout time.Duration
}

// NewConfig returns the default pipeline configuration.
func NewConfig() *Config {
	return &Config{
		StepTimeouts: map[string]time.Duration{
			StepIDValidate: DefaultValidateTimeout,
			StepIDRead:     DefaultReadTimeout,
			StepIDAssemble: DefaultAssembleTimeout,
		},
		DefaultStepTimeout: DefaultStepTimeout,
	}
}

// GetStepTimeout returns the timeout for the given step.
func (c *Config) GetStepTimeout(stepID string) time.Duration {
	if timeout, ok := c.StepTimeouts[stepID]; ok {
		return timeout
	}
	return c.DefaultStepTimeout
}
