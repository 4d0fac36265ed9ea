package errors

import "fmt"

func NewUnknownFailure(err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodeUnknownFailure,
		err,
		"unknown failure")
}

// NewEncodingFailuref formats and returns a new EncodingFailure
func NewEncodingFailuref(
	err error,
	msg string,
	args ...interface{},
) CodedFailure {
	return WrapCodedFailure(
		FailureCodeEncodingFailure,
		err,
		"encoding failed: "+msg,
		args...)
}

// NewResolverUnavailableFailure constructs a new CodedFailure which indicates
// that the state resolver failed to answer a read.  This is distinct from a
// value being absent.
func NewResolverUnavailableFailure(err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodeResolverUnavailableFailure,
		err,
		"resolver unavailable")
}

func IsResolverUnavailableFailure(err error) bool {
	return HasErrorCode(err, FailureCodeResolverUnavailableFailure)
}

// NewStateMergeFailure constructs a new CodedFailure which captures a fatal
// caused by state merge.
func NewStateMergeFailure(err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodeStateMergeFailure,
		err,
		"can not merge the state")
}

// NewConfigurationErrorf constructs a new CodedFailure which indicates that
// the virtual machine cannot be built from its configuration, e.g. because
// two natives claim the same dispatch key.
func NewConfigurationErrorf(msg string, args ...interface{}) CodedFailure {
	return NewCodedFailure(
		FailureCodeConfigurationFailure,
		"invalid configuration: "+msg,
		args...)
}

func IsConfigurationError(err error) bool {
	return HasErrorCode(err, FailureCodeConfigurationFailure)
}

// NewInvalidStateErrorf constructs a new CodedFailure which indicates that a
// session was used in violation of its lifecycle, e.g. finished twice.
func NewInvalidStateErrorf(msg string, args ...interface{}) CodedFailure {
	return NewCodedFailure(
		FailureCodeInvalidStateFailure,
		"invalid session state: "+msg,
		args...)
}

func IsInvalidStateError(err error) bool {
	return HasErrorCode(err, FailureCodeInvalidStateFailure)
}

// NewHostPanicFailure converts a recovered panic into a failure.
func NewHostPanicFailure(recovered interface{}) CodedFailure {
	return NewUnknownFailure(fmt.Errorf("host panic: %v", recovered))
}
