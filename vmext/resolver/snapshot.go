package resolver

import (
	"fmt"

	"github.com/onflow/flow-vmext/model/types"
)

// SnapshotResolver resolves state directly from a storage snapshot.  It is
// the storage-backed resolver variant.
type SnapshotResolver struct {
	snapshot StorageSnapshot
}

var _ StateResolver = (*SnapshotResolver)(nil)

// NewSnapshotResolver returns a resolver reading from snapshot.  A nil
// snapshot behaves as empty storage.
func NewSnapshotResolver(snapshot StorageSnapshot) *SnapshotResolver {
	if snapshot == nil {
		snapshot = EmptyStorageSnapshot{}
	}
	return &SnapshotResolver{snapshot: snapshot}
}

func (r *SnapshotResolver) GetResource(
	address types.Address,
	tag types.StructTag,
) (
	[]byte,
	error,
) {
	return r.snapshot.Get(types.ResourceKey(address, tag))
}

func (r *SnapshotResolver) GetModule(
	address types.Address,
	name string,
) (
	[]byte,
	error,
) {
	return r.snapshot.Get(types.ModuleKey(address, name))
}

func (r *SnapshotResolver) GetTableItem(
	handle types.TableHandle,
	key []byte,
) (
	[]byte,
	error,
) {
	return r.snapshot.Get(types.TableItemKey(handle, key))
}

func (r *SnapshotResolver) GetAggregatorValue(
	id types.AggregatorID,
) (
	uint64,
	bool,
	error,
) {
	data, err := r.snapshot.Get(types.AggregatorKey(id))
	if err != nil {
		return 0, false, err
	}
	if data == nil {
		return 0, false, nil
	}

	value, err := types.DecodeAggregatorValue(data)
	if err != nil {
		return 0, false, fmt.Errorf("corrupted aggregator %s: %w", id, err)
	}
	return value, true, nil
}

type EmptyStorageSnapshot struct{}

func (EmptyStorageSnapshot) Get(types.StateKey) ([]byte, error) {
	return nil, nil
}

// MapStorageSnapshot is an in-memory storage snapshot.  It must not be
// mutated while a session reads from it.
type MapStorageSnapshot map[types.StateKey][]byte

func (storage MapStorageSnapshot) Get(key types.StateKey) ([]byte, error) {
	return storage[key], nil
}

// Apply returns a new snapshot with the change set applied on top.
func (storage MapStorageSnapshot) Apply(changes types.ChangeSet) MapStorageSnapshot {
	next := make(MapStorageSnapshot, len(storage)+changes.Len())
	for key, value := range storage {
		next[key] = value
	}
	for key, op := range changes.Writes() {
		if op.IsDeletion() {
			delete(next, key)
			continue
		}
		next[key] = op.Value
	}
	return next
}
