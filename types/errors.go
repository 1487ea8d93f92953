package types

import "errors"

// Common errors
var (
	// ErrConfiguration indicates invalid construction parameters
	// (empty vocabulary, negative nonzero limit, negative weights).
	ErrConfiguration = errors.New("invalid configuration")

	// ErrOutOfRange indicates a vector references a term id outside [0, V)
	ErrOutOfRange = errors.New("term id out of range")

	// ErrDimensionMismatch indicates vectors and matrix were built for different vocabularies
	ErrDimensionMismatch = errors.New("vocabulary size mismatch")

	// ErrUnsupportedBackend indicates an unknown backend type
	ErrUnsupportedBackend = errors.New("unsupported backend type")

	// ErrUnsupportedStrategy indicates an unknown scoring strategy name
	ErrUnsupportedStrategy = errors.New("unsupported strategy")

	// ErrUnknownProvider indicates an unknown embedding provider
	ErrUnknownProvider = errors.New("unknown embedding provider")
)
