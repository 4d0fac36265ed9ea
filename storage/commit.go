package storage

import (
	"fmt"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/resolver"
)

// Writer is the write side of a backend batch or transaction.  Values are
// passed unencoded; backends apply their own value codec.
type Writer interface {
	Set(key []byte, value []byte) error
	Delete(key []byte) error
}

// ApplyOutput writes the change set and event log of output and returns the
// metadata of the commit.  The caller records the metadata.
func ApplyOutput(
	w Writer,
	sequence uint64,
	output *vmext.SessionOutput,
) (
	CommitMetadata,
	error,
) {
	changes := output.ChangeSet()
	err := changes.ForEach(func(key types.StateKey, op types.WriteOp) error {
		if op.IsDeletion() {
			return w.Delete(StateValueKey(key))
		}
		return w.Set(StateValueKey(key), op.Value)
	})
	if err != nil {
		return CommitMetadata{}, fmt.Errorf("could not apply change set: %w", err)
	}

	events := output.Events()
	encoded, err := events.Encode()
	if err != nil {
		return CommitMetadata{}, err
	}
	err = w.Set(EventsKey(sequence), encoded)
	if err != nil {
		return CommitMetadata{}, fmt.Errorf("could not store events: %w", err)
	}

	return CommitMetadata{
		Sequence:         sequence,
		SessionID:        output.SessionID().String(),
		Status:           output.Status().Kind.String(),
		Writes:           changes.Len(),
		Events:           len(events),
		AggregatorDeltas: output.AggregatorDeltas().Len(),
	}, nil
}

// DecodeEvents decodes an event log stored by ApplyOutput.
func DecodeEvents(data []byte) (types.EventLog, error) {
	var events []types.Event
	err := types.Unmarshal(data, &events)
	if err != nil {
		return nil, fmt.Errorf("could not decode events: %w", err)
	}
	return events, nil
}

// MaterializeDeltas applies each delta to the aggregator value read from
// snapshot and writes the result.  Every aggregator must exist.  No value is
// written if any delta fails to apply.
func MaterializeDeltas(
	snapshot resolver.StorageSnapshot,
	w Writer,
	deltas types.AggregatorDeltaSet,
) error {
	values := make(map[types.AggregatorID]uint64, deltas.Len())

	for _, id := range deltas.IDs() {
		data, err := snapshot.Get(types.AggregatorKey(id))
		if err != nil {
			return fmt.Errorf("could not read aggregator %s: %w", id, err)
		}
		if data == nil {
			return fmt.Errorf("aggregator %s: %w", id, ErrNotFound)
		}

		base, err := types.DecodeAggregatorValue(data)
		if err != nil {
			return fmt.Errorf("corrupted aggregator %s: %w", id, err)
		}

		delta, _ := deltas.Get(id)
		value, ok := types.ApplyDelta(base, delta)
		if !ok {
			return errors.NewAggregatorOverflowError(
				id,
				fmt.Errorf("cannot apply delta %d to %d", delta, base))
		}
		values[id] = value
	}

	for _, id := range deltas.IDs() {
		err := w.Set(
			StateValueKey(types.AggregatorKey(id)),
			types.EncodeAggregatorValue(values[id]))
		if err != nil {
			return fmt.Errorf("could not store aggregator %s: %w", id, err)
		}
	}
	return nil
}
