// Package config provides configuration types and defaults for autoboost.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrMissingInput indicates no input file was provided.
	ErrMissingInput = errors.New("input file is required")

	// ErrInvalidStage indicates a stage selector outside 0-3.
	ErrInvalidStage = errors.New("invalid stage selector")

	// ErrInvalidMetric indicates a metric selector outside 1-3.
	ErrInvalidMetric = errors.New("invalid metric selector")

	// ErrInvalidPolicy indicates a zone policy selector outside 1-4.
	ErrInvalidPolicy = errors.New("invalid zone policy selector")

	// ErrInvalidQuality indicates a base CRF outside the valid 0-63 range.
	ErrInvalidQuality = errors.New("base quality out of range")

	// ErrInvalidDeviation indicates a negative deviation bound.
	ErrInvalidDeviation = errors.New("deviation must not be negative")

	// ErrInvalidPreset indicates an encoder preset outside the valid 0-13 range.
	ErrInvalidPreset = errors.New("encoder preset out of range")

	// ErrInvalidSkip indicates a negative sampling stride.
	ErrInvalidSkip = errors.New("skip must not be negative")

	// ErrInvalidWorkers indicates a worker count below 1.
	ErrInvalidWorkers = errors.New("workers must be at least 1")
)
