package stdlib

import (
	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/natives"
)

// u64(): u64
func randomU64(
	rt natives.Runtime,
	_ []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	err := checkArity("0x1::randomness::u64", args, 0)
	if err != nil {
		return nil, err
	}

	value, err := rt.Random()
	if err != nil {
		return nil, err
	}
	return encodeReturn(value)
}
