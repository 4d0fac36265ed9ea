package stdlib

import (
	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/natives"
)

// emit<T>(payload: vector<u8>)
func emit(
	rt natives.Runtime,
	typeArgs []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	const function = "0x1::event::emit"

	if len(typeArgs) != 1 {
		return nil, errors.NewInvalidArgumentErrorf(
			"%s expects 1 type argument, got %d",
			function,
			len(typeArgs))
	}

	err := checkArity(function, args, 1)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if err := decodeArg(function, args, 0, &payload); err != nil {
		return nil, err
	}

	return nil, rt.EmitEvent(typeArgs[0], payload)
}
