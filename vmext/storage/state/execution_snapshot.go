package state

import (
	"github.com/onflow/flow-vmext/model/types"
)

// ExecutionSnapshot is the effect set of a finalized execution state.
type ExecutionSnapshot struct {
	// ReadSet contains every key read through the resolver.
	ReadSet map[types.StateKey]struct{}

	// WriteSet maps written keys to their last value.  A nil value is a
	// deletion.
	WriteSet map[types.StateKey][]byte

	// ExistedInBase records, for every written key, whether the key existed
	// in the resolver's state.
	ExistedInBase map[types.StateKey]bool

	// Events in emission order.  Event indices are assigned when the
	// session output is built.
	Events types.EventLog

	// Deltas are the unmaterialized aggregator deltas.
	Deltas types.AggregatorDeltaSet

	ComputationUsed uint64
	EventBytes      uint64
}

func (snapshot *ExecutionSnapshot) IsEmpty() bool {
	return len(snapshot.WriteSet) == 0 &&
		len(snapshot.Events) == 0 &&
		snapshot.Deltas.IsEmpty()
}
