package stdlib

import (
	"math"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/natives"
)

const maxDelta = math.MaxInt64

// add(id: address, delta: i64)
func aggregatorAdd(
	rt natives.Runtime,
	_ []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	const function = "0x1::aggregator::add"

	err := checkArity(function, args, 2)
	if err != nil {
		return nil, err
	}

	var id types.Address
	var delta int64
	if err := decodeArg(function, args, 0, &id); err != nil {
		return nil, err
	}
	if err := decodeArg(function, args, 1, &delta); err != nil {
		return nil, err
	}

	return nil, rt.AddToAggregator(types.AggregatorID(id), delta)
}

// read(id: address): u64
func aggregatorRead(
	rt natives.Runtime,
	_ []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	const function = "0x1::aggregator::read"

	err := checkArity(function, args, 1)
	if err != nil {
		return nil, err
	}

	var id types.Address
	if err := decodeArg(function, args, 0, &id); err != nil {
		return nil, err
	}

	value, err := rt.ReadAggregator(types.AggregatorID(id))
	if err != nil {
		return nil, err
	}
	return encodeReturn(value)
}
