package resolver

import (
	"fmt"

	"github.com/onflow/flow-vmext/model/types"
)

// OverlayResolver layers pending writes over a base resolver.  Keys written
// by the change set are answered from the change set (deletions read as
// absent); all other reads fall through to the base.
type OverlayResolver struct {
	base    StateResolver
	pending types.ChangeSet
}

var _ StateResolver = (*OverlayResolver)(nil)

func NewOverlayResolver(
	base StateResolver,
	pending types.ChangeSet,
) *OverlayResolver {
	return &OverlayResolver{
		base:    base,
		pending: pending,
	}
}

func (r *OverlayResolver) lookup(key types.StateKey) ([]byte, bool) {
	op, ok := r.pending.Get(key)
	if !ok {
		return nil, false
	}
	if op.IsDeletion() {
		return nil, true
	}
	return op.Value, true
}

func (r *OverlayResolver) GetResource(
	address types.Address,
	tag types.StructTag,
) (
	[]byte,
	error,
) {
	if value, ok := r.lookup(types.ResourceKey(address, tag)); ok {
		return value, nil
	}
	return r.base.GetResource(address, tag)
}

func (r *OverlayResolver) GetModule(
	address types.Address,
	name string,
) (
	[]byte,
	error,
) {
	if value, ok := r.lookup(types.ModuleKey(address, name)); ok {
		return value, nil
	}
	return r.base.GetModule(address, name)
}

func (r *OverlayResolver) GetTableItem(
	handle types.TableHandle,
	key []byte,
) (
	[]byte,
	error,
) {
	if value, ok := r.lookup(types.TableItemKey(handle, key)); ok {
		return value, nil
	}
	return r.base.GetTableItem(handle, key)
}

func (r *OverlayResolver) GetAggregatorValue(
	id types.AggregatorID,
) (
	uint64,
	bool,
	error,
) {
	op, ok := r.pending.Get(types.AggregatorKey(id))
	if !ok {
		return r.base.GetAggregatorValue(id)
	}
	if op.IsDeletion() {
		return 0, false, nil
	}
	value, err := types.DecodeAggregatorValue(op.Value)
	if err != nil {
		return 0, false, fmt.Errorf(
			"cannot decode pending aggregator %s: %w",
			id,
			err)
	}
	return value, true, nil
}
