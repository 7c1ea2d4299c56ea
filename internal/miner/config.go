package miner

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by New and Config.Validate for thresholds that
// cannot be satisfied meaningfully.
var ErrInvalidConfig = errors.New("invalid miner configuration")

// Config holds the thresholds a Miner is built with. It is copied into the
// Miner and never changes afterwards.
type Config struct {
	// SupportThreshold is the minimum support an itemset or rule must reach.
	// A row count when RelativeSupport is false, a proportion otherwise.
	SupportThreshold float64

	// ConfidenceThreshold is the minimum confidence (0-1) a rule must reach.
	ConfidenceThreshold float64

	// RelativeSupport reports supports as proportions of the total row count.
	RelativeSupport bool
}

// Validate checks the thresholds.
func (c Config) Validate() error {
	if c.SupportThreshold < 0 {
		return fmt.Errorf("%w: support threshold %v is negative", ErrInvalidConfig, c.SupportThreshold)
	}
	if c.RelativeSupport && c.SupportThreshold > 1 {
		return fmt.Errorf("%w: relative support threshold %v exceeds 1", ErrInvalidConfig, c.SupportThreshold)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold %v must be within [0, 1]", ErrInvalidConfig, c.ConfidenceThreshold)
	}
	return nil
}

// Mode returns "relative" or "absolute".
func (c Config) Mode() string {
	if c.RelativeSupport {
		return "relative"
	}
	return "absolute"
}
