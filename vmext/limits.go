package vmext

import (
	"github.com/onflow/flow-vmext/vmext/storage/state"
)

// Limits bound a single execute call.  A zero limit is unlimited.
type Limits struct {
	MaxComputation uint64 `mapstructure:"max-computation"`
	MaxEventBytes  uint64 `mapstructure:"max-event-bytes"`
	MaxWrites      uint64 `mapstructure:"max-writes"`
	MaxKeySize     uint64 `mapstructure:"max-key-size"`
	MaxValueSize   uint64 `mapstructure:"max-value-size"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxComputation: state.DefaultComputationLimit,
		MaxEventBytes:  state.DefaultMaxEventBytes,
		MaxWrites:      state.DefaultMaxWrites,
		MaxKeySize:     state.DefaultMaxKeySize,
		MaxValueSize:   state.DefaultMaxValueSize,
	}
}

// UnlimitedLimits disables every limit.
func UnlimitedLimits() Limits {
	return Limits{}
}

func (limits Limits) ExecutionParameters() state.ExecutionParameters {
	return state.ExecutionParameters{
		MaxKeySizeAllowed:   limits.MaxKeySize,
		MaxValueSizeAllowed: limits.MaxValueSize,
		MaxWritesAllowed:    limits.MaxWrites,
		MaxEventBytes:       limits.MaxEventBytes,
		ComputationLimit:    limits.MaxComputation,
	}
}
