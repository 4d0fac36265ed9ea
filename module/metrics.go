package module

import (
	"time"

	"github.com/onflow/flow-vmext/model/types"
)

// SessionStats summarizes the output of a finished session.
type SessionStats struct {
	Status           string
	Writes           int
	Events           int
	AggregatorDeltas int
	ComputationUsed  uint64
}

type VMExtMetrics interface {
	// SessionStarted reports a new session of the given kind
	SessionStarted(kind types.SessionKind)

	// ExecuteCallFinished reports the duration, the computation used and the
	// status of a single execute call
	ExecuteCallFinished(dur time.Duration, computationUsed uint64, status string)

	// SessionFinished reports the lifetime of a session and the size of its output
	SessionFinished(kind types.SessionKind, dur time.Duration, stats SessionStats)

	// ChangeSetCommitted reports a change set applied by a storage committer
	ChangeSetCommitted(dur time.Duration, writes int, bytes int)
}
