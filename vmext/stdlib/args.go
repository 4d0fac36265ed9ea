package stdlib

import (
	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/errors"
)

// EncodeArgs encodes native arguments.  Every argument and return value of
// the framework natives is a CBOR value.
func EncodeArgs(values ...interface{}) ([][]byte, error) {
	args := make([][]byte, 0, len(values))
	for i, value := range values {
		arg, err := types.Marshal(value)
		if err != nil {
			return nil, errors.NewEncodingFailuref(
				err,
				"cannot encode argument %d",
				i)
		}
		args = append(args, arg)
	}
	return args, nil
}

func MustEncodeArgs(values ...interface{}) [][]byte {
	args, err := EncodeArgs(values...)
	if err != nil {
		panic(err)
	}
	return args
}

func checkArity(function string, args [][]byte, expected int) error {
	if len(args) != expected {
		return errors.NewInvalidArgumentErrorf(
			"%s expects %d arguments, got %d",
			function,
			expected,
			len(args))
	}
	return nil
}

func decodeArg(function string, args [][]byte, index int, target interface{}) error {
	err := types.Unmarshal(args[index], target)
	if err != nil {
		return errors.NewInvalidArgumentErrorf(
			"%s: cannot decode argument %d: %s",
			function,
			index,
			err.Error())
	}
	return nil
}

func encodeReturn(values ...interface{}) ([][]byte, error) {
	return EncodeArgs(values...)
}
