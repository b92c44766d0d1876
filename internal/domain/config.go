package domain

import (
	"fmt"

	"github.com/lexivec/lexivec/internal/domain/vector"
)

// StoreConfig holds per-store settings, fixed at construction.
type StoreConfig struct {
	Dimensions int
	Metric     vector.Metric
}

// Validate checks the store configuration.
func (c StoreConfig) Validate() error {
	if c.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d: %w", c.Dimensions, ErrValidation)
	}
	if !c.Metric.IsValid() {
		return fmt.Errorf("unknown distance metric %q: %w", c.Metric, ErrValidation)
	}
	return nil
}
