package stdlib

import (
	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/natives"
)

func decodeTableArgs(
	function string,
	args [][]byte,
	expected int,
) (
	handle types.TableHandle,
	key []byte,
	err error,
) {
	err = checkArity(function, args, expected)
	if err != nil {
		return handle, nil, err
	}

	var address types.Address
	if err := decodeArg(function, args, 0, &address); err != nil {
		return handle, nil, err
	}
	if err := decodeArg(function, args, 1, &key); err != nil {
		return handle, nil, err
	}
	return types.TableHandle(address), key, nil
}

// new(): address
func tableNew(
	rt natives.Runtime,
	_ []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	err := checkArity("0x1::table::new", args, 0)
	if err != nil {
		return nil, err
	}

	handle, err := rt.NewTableHandle()
	if err != nil {
		return nil, err
	}
	return encodeReturn(types.Address(handle))
}

// add(handle: address, key: vector<u8>, value: vector<u8>)
func tableAdd(
	rt natives.Runtime,
	_ []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	const function = "0x1::table::add"

	handle, key, err := decodeTableArgs(function, args, 3)
	if err != nil {
		return nil, err
	}

	var value []byte
	if err := decodeArg(function, args, 2, &value); err != nil {
		return nil, err
	}

	existing, err := rt.GetTableItem(handle, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewNativeAbortError(
			function,
			AbortCodeAlreadyExists,
			"entry already exists in table %s",
			handle)
	}

	return nil, rt.SetTableItem(handle, key, value)
}

// borrow(handle: address, key: vector<u8>): vector<u8>
func tableBorrow(
	rt natives.Runtime,
	_ []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	const function = "0x1::table::borrow"

	handle, key, err := decodeTableArgs(function, args, 2)
	if err != nil {
		return nil, err
	}

	value, err := rt.GetTableItem(handle, key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errors.NewNativeAbortError(
			function,
			AbortCodeNotFound,
			"entry not found in table %s",
			handle)
	}
	return encodeReturn(value)
}

// remove(handle: address, key: vector<u8>): vector<u8>
func tableRemove(
	rt natives.Runtime,
	_ []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	const function = "0x1::table::remove"

	handle, key, err := decodeTableArgs(function, args, 2)
	if err != nil {
		return nil, err
	}

	value, err := rt.GetTableItem(handle, key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errors.NewNativeAbortError(
			function,
			AbortCodeNotFound,
			"entry not found in table %s",
			handle)
	}

	err = rt.DeleteTableItem(handle, key)
	if err != nil {
		return nil, err
	}
	return encodeReturn(value)
}
