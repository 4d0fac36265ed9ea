package errors

import (
	"github.com/onflow/flow-vmext/model/types"
)

// NewMissingDataErrorf constructs a new CodedError which indicates that an
// execute call required state which the resolver does not have.
func NewMissingDataErrorf(
	key types.StateKey,
	msg string,
	args ...interface{},
) CodedError {
	return NewCodedError(
		ErrCodeMissingDataError,
		"missing data for %s: "+msg,
		append([]interface{}{key.String()}, args...)...)
}

func IsMissingDataError(err error) bool {
	return HasErrorCode(err, ErrCodeMissingDataError)
}

// NewLinkerErrorf constructs a new CodedError which indicates that a function
// or module referenced by a request could not be linked.
func NewLinkerErrorf(
	module types.ModuleID,
	msg string,
	args ...interface{},
) CodedError {
	return NewCodedError(
		ErrCodeLinkerError,
		"cannot link %s: "+msg,
		append([]interface{}{module.String()}, args...)...)
}

func IsLinkerError(err error) bool {
	return HasErrorCode(err, ErrCodeLinkerError)
}

// NewRuntimeFaultError wraps a fault raised by the interpreter while running
// bytecode (type errors, arithmetic errors, ...).
func NewRuntimeFaultError(err error) CodedError {
	return WrapCodedError(
		ErrCodeRuntimeFaultError,
		err,
		"runtime fault")
}

func IsRuntimeFaultError(err error) bool {
	return HasErrorCode(err, ErrCodeRuntimeFaultError)
}

// NewNativeAbortError constructs a new CodedError which indicates that a
// native function aborted with an application level abort code.
func NewNativeAbortError(
	function string,
	abortCode uint64,
	msg string,
	args ...interface{},
) CodedError {
	return NewCodedError(
		ErrCodeNativeAbortError,
		"%s aborted with code %d: "+msg,
		append([]interface{}{function, abortCode}, args...)...)
}

func IsNativeAbortError(err error) bool {
	return HasErrorCode(err, ErrCodeNativeAbortError)
}

// NewComputationLimitExceededError constructs a new CodedError which
// indicates that an execute call used more computation than allowed.
func NewComputationLimitExceededError(limit uint64) CodedError {
	return NewCodedError(
		ErrCodeComputationLimitExceededError,
		"computation exceeds limit (%d)",
		limit)
}

// NewEventLimitExceededError constructs a CodedError which indicates that the
// execute call has emitted events with a total byte size over the limit.
func NewEventLimitExceededError(
	totalByteSize uint64,
	limit uint64,
) CodedError {
	return NewCodedError(
		ErrCodeEventLimitExceededError,
		"total event byte size (%d) exceeds limit (%d)",
		totalByteSize,
		limit)
}

// NewWriteSetLimitExceededError constructs a CodedError which indicates that
// the execute call has written more distinct keys than allowed.
func NewWriteSetLimitExceededError(
	writes uint64,
	limit uint64,
) CodedError {
	return NewCodedError(
		ErrCodeWriteSetLimitExceededError,
		"number of writes (%d) exceeds limit (%d)",
		writes,
		limit)
}

// NewStateKeySizeLimitError constructs a CodedError which indicates that the
// provided key has exceeded the size limit allowed by the storage.
func NewStateKeySizeLimitError(
	key types.StateKey,
	size uint64,
	limit uint64,
) CodedError {
	return NewCodedError(
		ErrCodeStateKeySizeLimitError,
		"key %s has size %d which is higher than storage key size limit %d.",
		key.String(),
		size,
		limit)
}

// NewStateValueSizeLimitError constructs a CodedError which indicates that
// the provided value has exceeded the size limit allowed by the storage.
func NewStateValueSizeLimitError(
	key types.StateKey,
	size uint64,
	limit uint64,
) CodedError {
	return NewCodedError(
		ErrCodeStateValueSizeLimitError,
		"value of %s has size %d which is higher than storage value size limit %d.",
		key.String(),
		size,
		limit)
}

// IsOutOfResourceError returns true if the error is caused by one of the
// per-call resource limits.
func IsOutOfResourceError(err error) bool {
	return HasErrorCode(err, ErrCodeComputationLimitExceededError) ||
		HasErrorCode(err, ErrCodeEventLimitExceededError) ||
		HasErrorCode(err, ErrCodeWriteSetLimitExceededError) ||
		HasErrorCode(err, ErrCodeStateKeySizeLimitError) ||
		HasErrorCode(err, ErrCodeStateValueSizeLimitError)
}

// NewExecutionCancelledError constructs a CodedError which indicates that the
// session was aborted by its owner while the call was running.
func NewExecutionCancelledError(reason string) CodedError {
	return NewCodedError(
		ErrCodeExecutionCancelledError,
		"execution cancelled: %s",
		reason)
}

func IsExecutionCancelledError(err error) bool {
	return HasErrorCode(err, ErrCodeExecutionCancelledError)
}

// NewAggregatorOverflowError constructs a CodedError which indicates that an
// aggregator delta or value left its range.
func NewAggregatorOverflowError(
	id types.AggregatorID,
	err error,
) CodedError {
	return WrapCodedError(
		ErrCodeAggregatorOverflowError,
		err,
		"aggregator %s overflow",
		id.String())
}

func IsAggregatorOverflowError(err error) bool {
	return HasErrorCode(err, ErrCodeAggregatorOverflowError)
}

// NewInvalidModuleBundleErrorf constructs a CodedError which indicates that a
// module bundle is malformed.
func NewInvalidModuleBundleErrorf(
	msg string,
	args ...interface{},
) CodedError {
	return NewCodedError(
		ErrCodeInvalidModuleBundleError,
		"invalid module bundle: "+msg,
		args...)
}

// NewModuleVerificationError wraps a module verification error reported by
// the interpreter.
func NewModuleVerificationError(
	module types.ModuleID,
	err error,
) CodedError {
	return WrapCodedError(
		ErrCodeModuleVerificationError,
		err,
		"module %s failed verification",
		module.String())
}
