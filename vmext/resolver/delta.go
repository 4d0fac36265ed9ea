package resolver

import (
	"fmt"

	"github.com/onflow/flow-vmext/model/types"
)

// DeltaResolver layers unmaterialized aggregator deltas over a base
// resolver.  Reading an aggregator through it forces resolution: the base
// value plus the pending delta.  A delta against an aggregator the base does
// not have stays pending and the aggregator reads as absent.  It is used to
// chain sessions whose outputs have not been committed yet.
type DeltaResolver struct {
	StateResolver

	deltas types.AggregatorDeltaSet
}

var _ StateResolver = (*DeltaResolver)(nil)

func NewDeltaResolver(
	base StateResolver,
	deltas types.AggregatorDeltaSet,
) *DeltaResolver {
	return &DeltaResolver{
		StateResolver: base,
		deltas:        deltas.Clone(),
	}
}

func (r *DeltaResolver) GetAggregatorValue(
	id types.AggregatorID,
) (
	uint64,
	bool,
	error,
) {
	base, found, err := r.StateResolver.GetAggregatorValue(id)
	if err != nil {
		return 0, false, err
	}

	delta, ok := r.deltas.Get(id)
	if !ok || !found {
		// a delta never brings an aggregator into existence
		return base, found, nil
	}

	value, ok := types.ApplyDelta(base, delta)
	if !ok {
		return 0, false, fmt.Errorf(
			"cannot apply delta %d to aggregator %s with value %d",
			delta,
			id,
			base)
	}
	return value, true, nil
}
