package state

import (
	"fmt"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/resolver"
)

// ExecutionState is the accumulator of a session.  The root state reads
// through the resolver and caches every answer, so that the resolver is
// consulted at most once per key for the whole session.  Each execute call
// runs in a child state, which is merged into its parent on success and
// dropped otherwise.
//
// ExecutionState is not thread safe; a session runs its calls sequentially.
type ExecutionState struct {
	// NOTE: A finalized state is no longer accessible.  It can still be
	// merged into the parent state.
	finalized bool

	parent *ExecutionState

	// root only
	resolver  resolver.StateResolver
	readCache map[types.StateKey][]byte

	readSet       map[types.StateKey]struct{}
	writeSet      map[types.StateKey][]byte
	existedInBase map[types.StateKey]bool
	events        types.EventLog
	deltas        types.AggregatorDeltaSet

	computationUsed uint64
	eventBytes      uint64

	params ExecutionParameters
}

// NewExecutionState constructs a new root state reading through resolver.
func NewExecutionState(
	base resolver.StateResolver,
	params ExecutionParameters,
) *ExecutionState {
	if base == nil {
		base = resolver.NewSnapshotResolver(nil)
	}
	st := newState(params)
	st.resolver = base
	st.readCache = map[types.StateKey][]byte{}
	return st
}

func newState(params ExecutionParameters) *ExecutionState {
	return &ExecutionState{
		readSet:       map[types.StateKey]struct{}{},
		writeSet:      map[types.StateKey][]byte{},
		existedInBase: map[types.StateKey]bool{},
		deltas:        types.NewAggregatorDeltaSet(),
		params:        params,
	}
}

// NewChild generates a new child state.  The child sees every change of its
// ancestors.
func (state *ExecutionState) NewChild() *ExecutionState {
	child := newState(state.params)
	child.parent = state
	return child
}

func (state *ExecutionState) root() *ExecutionState {
	st := state
	for st.parent != nil {
		st = st.parent
	}
	return st
}

func (state *ExecutionState) checkAccessible() error {
	if state.finalized {
		return errors.NewInvalidStateErrorf("execution state is finalized")
	}
	return nil
}

func (state *ExecutionState) checkKeySize(key types.StateKey) error {
	size := key.Size()
	if size > limitOrUnlimited(state.params.MaxKeySizeAllowed) {
		return errors.NewStateKeySizeLimitError(
			key,
			size,
			state.params.MaxKeySizeAllowed)
	}
	return nil
}

// readBase reads a key from the resolver, caching the answer at the root.
// Resolver errors are failures.
func (state *ExecutionState) readBase(key types.StateKey) ([]byte, error) {
	root := state.root()
	if value, ok := root.readCache[key]; ok {
		return value, nil
	}

	value, err := resolver.Get(root.resolver, key)
	if err != nil {
		return nil, errors.NewResolverUnavailableFailure(
			fmt.Errorf("cannot read %s: %w", key, err))
	}

	root.readCache[key] = value
	return value, nil
}

// lookup returns the latest value of the key visible to this state, and
// whether any state in the chain has written it.
func (state *ExecutionState) lookup(key types.StateKey) ([]byte, bool) {
	for st := state; st != nil; st = st.parent {
		if value, ok := st.writeSet[key]; ok {
			return value, true
		}
	}
	return nil, false
}

// Get returns the value of the key; nil if the key does not exist.
func (state *ExecutionState) Get(key types.StateKey) ([]byte, error) {
	err := state.checkAccessible()
	if err != nil {
		return nil, err
	}

	err = state.checkKeySize(key)
	if err != nil {
		return nil, err
	}

	if value, ok := state.lookup(key); ok {
		return value, nil
	}

	state.readSet[key] = struct{}{}
	return state.readBase(key)
}

// Exists returns true if the key has a value.
func (state *ExecutionState) Exists(key types.StateKey) (bool, error) {
	value, err := state.Get(key)
	if err != nil {
		return false, err
	}
	return value != nil, nil
}

// Set updates the value of the key.  A nil value deletes the key.
func (state *ExecutionState) Set(key types.StateKey, value []byte) error {
	err := state.checkAccessible()
	if err != nil {
		return err
	}

	err = state.checkKeySize(key)
	if err != nil {
		return err
	}

	if key.Kind == types.StateKeyAggregator {
		return errors.NewInvalidArgumentErrorf(
			"aggregator %s can only be updated with deltas",
			key.Owner)
	}

	size := uint64(len(value))
	if size > limitOrUnlimited(state.params.MaxValueSizeAllowed) {
		return errors.NewStateValueSizeLimitError(
			key,
			size,
			state.params.MaxValueSizeAllowed)
	}

	if _, ok := state.writeSet[key]; !ok {
		writes := uint64(len(state.writeSet)) + 1
		if writes > limitOrUnlimited(state.params.MaxWritesAllowed) {
			return errors.NewWriteSetLimitExceededError(
				writes,
				state.params.MaxWritesAllowed)
		}

		existed, err := state.baseExists(key)
		if err != nil {
			return err
		}
		state.existedInBase[key] = existed
	}

	if value == nil {
		state.writeSet[key] = nil
	} else {
		state.writeSet[key] = append([]byte{}, value...)
	}
	return nil
}

// Delete removes the key.
func (state *ExecutionState) Delete(key types.StateKey) error {
	return state.Set(key, nil)
}

func (state *ExecutionState) baseExists(key types.StateKey) (bool, error) {
	for st := state; st != nil; st = st.parent {
		if existed, ok := st.existedInBase[key]; ok {
			return existed, nil
		}
	}

	value, err := state.readBase(key)
	if err != nil {
		return false, err
	}
	return value != nil, nil
}

// EmitEvent appends an event to the state's event log.
func (state *ExecutionState) EmitEvent(
	eventType types.TypeTag,
	payload []byte,
) error {
	err := state.checkAccessible()
	if err != nil {
		return err
	}

	event := types.Event{
		Type:    eventType,
		Payload: append([]byte{}, payload...),
	}

	total := state.eventBytes + event.ByteSize()
	if total > limitOrUnlimited(state.params.MaxEventBytes) {
		return errors.NewEventLimitExceededError(
			total,
			state.params.MaxEventBytes)
	}

	state.eventBytes = total
	state.events = append(state.events, event)
	return nil
}

// AddDelta records an aggregator delta without resolving the aggregator.
func (state *ExecutionState) AddDelta(
	id types.AggregatorID,
	delta int64,
) error {
	err := state.checkAccessible()
	if err != nil {
		return err
	}

	err = state.deltas.Add(id, delta)
	if err != nil {
		return errors.NewAggregatorOverflowError(id, err)
	}
	return nil
}

// PendingDelta returns the delta of the aggregator accumulated by this state
// and all of its ancestors.
func (state *ExecutionState) PendingDelta(
	id types.AggregatorID,
) (
	int64,
	error,
) {
	var total int64
	for st := state; st != nil; st = st.parent {
		delta, ok := st.deltas.Get(id)
		if !ok {
			continue
		}

		sum, ok := types.AddDelta(total, delta)
		if !ok {
			return 0, errors.NewAggregatorOverflowError(
				id,
				fmt.Errorf("pending delta overflow"))
		}
		total = sum
	}
	return total, nil
}

// ReadAggregator forces resolution of an aggregator: its base value plus
// every pending delta.  The pending deltas are kept as deltas.
func (state *ExecutionState) ReadAggregator(
	id types.AggregatorID,
) (
	uint64,
	error,
) {
	err := state.checkAccessible()
	if err != nil {
		return 0, err
	}

	key := types.AggregatorKey(id)

	data, ok := state.lookup(key)
	if !ok {
		state.readSet[key] = struct{}{}

		data, err = state.readBase(key)
		if err != nil {
			return 0, err
		}
	}
	if data == nil {
		return 0, errors.NewMissingDataErrorf(key, "aggregator does not exist")
	}

	base, err := types.DecodeAggregatorValue(data)
	if err != nil {
		return 0, errors.NewResolverUnavailableFailure(
			fmt.Errorf("corrupted aggregator %s: %w", id, err))
	}

	delta, err := state.PendingDelta(id)
	if err != nil {
		return 0, err
	}

	value, ok := types.ApplyDelta(base, delta)
	if !ok {
		return 0, errors.NewAggregatorOverflowError(
			id,
			fmt.Errorf("cannot apply delta %d to %d", delta, base))
	}
	return value, nil
}

// InitializeAggregator creates an aggregator with the given value.  This is
// the only way to write an aggregator key; it is reserved for direct write
// sets.
func (state *ExecutionState) InitializeAggregator(
	id types.AggregatorID,
	value uint64,
) error {
	err := state.checkAccessible()
	if err != nil {
		return err
	}

	key := types.AggregatorKey(id)
	existing, ok := state.lookup(key)
	if !ok {
		existing, err = state.readBase(key)
		if err != nil {
			return err
		}
	}
	if existing != nil {
		return errors.NewInvalidArgumentErrorf(
			"aggregator %s already exists",
			id)
	}

	if _, ok := state.writeSet[key]; !ok {
		writes := uint64(len(state.writeSet)) + 1
		if writes > limitOrUnlimited(state.params.MaxWritesAllowed) {
			return errors.NewWriteSetLimitExceededError(
				writes,
				state.params.MaxWritesAllowed)
		}
		state.existedInBase[key] = false
	}

	state.writeSet[key] = types.EncodeAggregatorValue(value)
	return nil
}

// MeterComputation charges computation to the state.
func (state *ExecutionState) MeterComputation(units uint64) error {
	err := state.checkAccessible()
	if err != nil {
		return err
	}

	limit := limitOrUnlimited(state.params.ComputationLimit)
	if units > limit || state.computationUsed > limit-units {
		state.computationUsed = limit
		return errors.NewComputationLimitExceededError(
			state.params.ComputationLimit)
	}

	state.computationUsed += units
	return nil
}

func (state *ExecutionState) ComputationUsed() uint64 {
	return state.computationUsed
}

func (state *ExecutionState) EventCount() int {
	return len(state.events)
}

// Finalize returns the effect set of the state.  The state is no longer
// accessible afterwards.
func (state *ExecutionState) Finalize() *ExecutionSnapshot {
	state.finalized = true

	return &ExecutionSnapshot{
		ReadSet:         state.readSet,
		WriteSet:        state.writeSet,
		ExistedInBase:   state.existedInBase,
		Events:          state.events,
		Deltas:          state.deltas.Clone(),
		ComputationUsed: state.computationUsed,
		EventBytes:      state.eventBytes,
	}
}

// Merge folds a child's effect set into this state.  Later writes to the
// same key overwrite earlier ones; events are appended; deltas are added.
func (state *ExecutionState) Merge(snapshot *ExecutionSnapshot) error {
	err := state.checkAccessible()
	if err != nil {
		return err
	}

	for key := range snapshot.ReadSet {
		state.readSet[key] = struct{}{}
	}

	for key, value := range snapshot.WriteSet {
		if _, ok := state.existedInBase[key]; !ok {
			state.existedInBase[key] = snapshot.ExistedInBase[key]
		}
		state.writeSet[key] = value
	}

	state.events = append(state.events, snapshot.Events...)

	err = state.deltas.Merge(snapshot.Deltas)
	if err != nil {
		return errors.NewStateMergeFailure(err)
	}

	state.computationUsed += snapshot.ComputationUsed
	state.eventBytes += snapshot.EventBytes
	return nil
}

// DropChanges discards every change of the state.  The read set is kept.
func (state *ExecutionState) DropChanges() error {
	err := state.checkAccessible()
	if err != nil {
		return err
	}

	state.writeSet = map[types.StateKey][]byte{}
	state.existedInBase = map[types.StateKey]bool{}
	state.events = nil
	state.deltas = types.NewAggregatorDeltaSet()
	state.eventBytes = 0
	return nil
}
