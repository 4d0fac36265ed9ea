package state

import (
	"math"
)

const (
	DefaultMaxKeySize         = 16_000      // ~16KB
	DefaultMaxValueSize       = 256_000_000 // ~256MB
	DefaultMaxWrites          = 8_192
	DefaultMaxEventBytes      = 2_000_000 // ~2MB
	DefaultComputationLimit   = 1_000_000
	defaultUnlimitedParameter = math.MaxUint64
)

// ExecutionParameters are the per-call limits enforced by an execution
// state.  A zero value disables the corresponding limit.
type ExecutionParameters struct {
	MaxKeySizeAllowed   uint64
	MaxValueSizeAllowed uint64
	MaxWritesAllowed    uint64
	MaxEventBytes       uint64
	ComputationLimit    uint64
}

func DefaultParameters() ExecutionParameters {
	return ExecutionParameters{
		MaxKeySizeAllowed:   DefaultMaxKeySize,
		MaxValueSizeAllowed: DefaultMaxValueSize,
		MaxWritesAllowed:    DefaultMaxWrites,
		MaxEventBytes:       DefaultMaxEventBytes,
		ComputationLimit:    DefaultComputationLimit,
	}
}

func (params ExecutionParameters) WithMaxKeySizeAllowed(
	limit uint64,
) ExecutionParameters {
	newParams := params
	newParams.MaxKeySizeAllowed = limit
	return newParams
}

func (params ExecutionParameters) WithMaxValueSizeAllowed(
	limit uint64,
) ExecutionParameters {
	newParams := params
	newParams.MaxValueSizeAllowed = limit
	return newParams
}

func (params ExecutionParameters) WithMaxWritesAllowed(
	limit uint64,
) ExecutionParameters {
	newParams := params
	newParams.MaxWritesAllowed = limit
	return newParams
}

func (params ExecutionParameters) WithMaxEventBytes(
	limit uint64,
) ExecutionParameters {
	newParams := params
	newParams.MaxEventBytes = limit
	return newParams
}

func (params ExecutionParameters) WithComputationLimit(
	limit uint64,
) ExecutionParameters {
	newParams := params
	newParams.ComputationLimit = limit
	return newParams
}

func limitOrUnlimited(limit uint64) uint64 {
	if limit == 0 {
		return defaultUnlimitedParameter
	}
	return limit
}
