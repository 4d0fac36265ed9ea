package vmext

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/storage/state"
)

type StatusKind uint8

const (
	StatusSuccess StatusKind = iota
	// StatusAborted: a call failed with a coded error, or the session was
	// aborted.  Effects of the successful calls are kept.
	StatusAborted
	// StatusFailed: a call hit a failure.  The session has no effects.
	StatusFailed
)

func (kind StatusKind) String() string {
	switch kind {
	case StatusSuccess:
		return "success"
	case StatusAborted:
		return "aborted"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(kind))
	}
}

// EffectPolicy states what happens to the effects of a session.
type EffectPolicy uint8

const (
	KeepEffects EffectPolicy = iota
	DiscardAll
)

func (policy EffectPolicy) String() string {
	if policy == DiscardAll {
		return "discard_all"
	}
	return "keep_effects"
}

type Status struct {
	Kind    StatusKind
	Code    errors.ErrorCode
	Message string
	Policy  EffectPolicy
}

func SuccessStatus() Status {
	return Status{Kind: StatusSuccess, Policy: KeepEffects}
}

// statusFromError classifies a call error.  err must be non-nil.
func statusFromError(err error) Status {
	codedErr, failure := errors.SplitErrorTypes(err)
	if failure != nil {
		return Status{
			Kind:    StatusFailed,
			Code:    failure.Code(),
			Message: failure.Error(),
			Policy:  DiscardAll,
		}
	}
	return Status{
		Kind:    StatusAborted,
		Code:    codedErr.Code(),
		Message: codedErr.Error(),
		Policy:  KeepEffects,
	}
}

func (status Status) IsSuccess() bool {
	return status.Kind == StatusSuccess
}

func (status Status) String() string {
	if status.IsSuccess() {
		return status.Kind.String()
	}
	return fmt.Sprintf("%s %s (%s): %s", status.Kind, status.Code, status.Policy, status.Message)
}

// ExecutionResult is the outcome of one execute call.
type ExecutionResult struct {
	Status          Status
	ReturnValues    [][]byte
	ComputationUsed uint64
}

// SessionOutput is the committable result of a finished session.  It is
// immutable; accessors return copies.
type SessionOutput struct {
	id              types.SessionID
	status          Status
	changeSet       types.ChangeSet
	events          types.EventLog
	deltas          types.AggregatorDeltaSet
	readSet         []types.StateKey
	computationUsed uint64
}

// buildOutput folds the merged effects of a session.  Each written key
// becomes a single write op relative to the resolver's state; a key created
// and deleted within the session is left out.
func buildOutput(
	id types.SessionID,
	status Status,
	snapshot *state.ExecutionSnapshot,
) *SessionOutput {
	output := &SessionOutput{
		id:              id,
		status:          status,
		changeSet:       types.NewChangeSet(nil),
		deltas:          types.NewAggregatorDeltaSet(),
		readSet:         sortedKeys(snapshot.ReadSet),
		computationUsed: snapshot.ComputationUsed,
	}

	if status.Policy == DiscardAll {
		return output
	}

	writes := make(map[types.StateKey]types.WriteOp, len(snapshot.WriteSet))
	for key, value := range snapshot.WriteSet {
		op, ok := types.NewWriteOp(snapshot.ExistedInBase[key], value)
		if !ok {
			continue
		}
		writes[key] = op
	}
	output.changeSet = types.NewChangeSet(writes)

	output.events = make(types.EventLog, len(snapshot.Events))
	for i, event := range snapshot.Events {
		event.Index = uint32(i)
		output.events[i] = event
	}

	output.deltas = snapshot.Deltas.Clone()
	return output
}

func sortedKeys(set map[types.StateKey]struct{}) []types.StateKey {
	keys := maps.Keys(set)
	slices.SortFunc(keys, types.StateKey.Compare)
	return keys
}

func (output *SessionOutput) SessionID() types.SessionID {
	return output.id
}

func (output *SessionOutput) Status() Status {
	return output.status
}

func (output *SessionOutput) ChangeSet() types.ChangeSet {
	return output.changeSet
}

func (output *SessionOutput) Events() types.EventLog {
	events := make(types.EventLog, len(output.events))
	for i, event := range output.events {
		event.Payload = append([]byte{}, event.Payload...)
		events[i] = event
	}
	return events
}

func (output *SessionOutput) AggregatorDeltas() types.AggregatorDeltaSet {
	return output.deltas.Clone()
}

// ReadSet returns every key the session read from the resolver, in
// canonical order.
func (output *SessionOutput) ReadSet() []types.StateKey {
	return append([]types.StateKey{}, output.readSet...)
}

func (output *SessionOutput) ComputationUsed() uint64 {
	return output.computationUsed
}

func (output *SessionOutput) IsEmpty() bool {
	return output.changeSet.IsEmpty() &&
		len(output.events) == 0 &&
		output.deltas.IsEmpty()
}
