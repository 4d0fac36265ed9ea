package errors

import (
	"github.com/onflow/flow-vmext/model/types"
)

// NewInvalidAddressErrorf constructs a new CodedError which indicates that a
// request references an invalid address.
func NewInvalidAddressErrorf(
	address types.Address,
	msg string,
	args ...interface{},
) CodedError {
	return NewCodedError(
		ErrCodeInvalidAddressError,
		"invalid address (%s): "+msg,
		append([]interface{}{address.String()}, args...)...)
}

// NewInvalidArgumentErrorf constructs a new CodedError which indicates that a
// request includes invalid arguments.
func NewInvalidArgumentErrorf(msg string, args ...interface{}) CodedError {
	return NewCodedError(
		ErrCodeInvalidArgumentError,
		"arguments are invalid: ("+msg+")",
		args...)
}

func IsInvalidArgumentError(err error) bool {
	return HasErrorCode(err, ErrCodeInvalidArgumentError)
}

// NewValueErrorf constructs a new CodedError which indicates a value is not
// valid value.
func NewValueErrorf(
	valueStr string,
	msg string,
	args ...interface{},
) CodedError {
	return NewCodedError(
		ErrCodeValueError,
		"invalid value (%s): "+msg,
		append([]interface{}{valueStr}, args...)...)
}

func IsValueError(err error) bool {
	return HasErrorCode(err, ErrCodeValueError)
}

// NewOperationNotSupportedError constructs a new CodedError. It is generated
// when an operation (e.g. running a script without an interpreter) is not
// supported by the current configuration.
func NewOperationNotSupportedError(operation string) CodedError {
	return NewCodedError(
		ErrCodeOperationNotSupportedError,
		"operation (%s) is not supported in this environment",
		operation)
}

func IsOperationNotSupportedError(err error) bool {
	return HasErrorCode(err, ErrCodeOperationNotSupportedError)
}
