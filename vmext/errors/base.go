package errors

import (
	stdErrors "errors"
	"fmt"
)

type Unwrappable interface {
	error
	Unwrap() error
}

type UnwrappableErrors interface {
	error
	Unwrap() []error
}

// CodedError is an error carrying an ErrorCode.  Non-failure coded errors
// are recoverable: the execute call's effects are discarded and the session
// may continue.
type CodedError interface {
	Code() ErrorCode

	Unwrappable
	error
}

// CodedFailure is a CodedError with a failure code.  Failures are never
// contained in an execution status; they propagate to the caller.
type CodedFailure interface {
	CodedError

	isFailure()
}

// Is is a utility function to call std error lib `Is` function for instance equality checks.
func Is(err error, target error) bool {
	return stdErrors.Is(err, target)
}

// As is a utility function to call std error lib `As` function.
// As finds the first error in err's chain that matches target,
// and if so, sets target to that error value and returns true. Otherwise, it returns false.
// The chain consists of err itself followed by the sequence of errors obtained by repeatedly calling Unwrap.
func As(err error, target interface{}) bool {
	return stdErrors.As(err, target)
}

// findImportantCodedError recursively unwraps the error to search for
// important coded error:
//  1. If err is nil, this returns (nil, false),
//  2. If err has failure code, this returns (the shallowest failure, true),
//  3. If err has non-failure error code, this returns (the deepest, aka root
//     cause, non-failure coded error, false)
//  4. Otherwise, this returns (nil, false)
func findImportantCodedError(err error) (CodedError, bool) {
	if err == nil {
		return nil, false
	}

	var coded CodedError
	if !As(err, &coded) {
		return nil, false
	}

	for {
		if coded.Code().IsFailure() {
			return coded, true
		}

		var nextCoded CodedError
		if !As(coded.Unwrap(), &nextCoded) {
			return coded, false
		}

		coded = nextCoded
	}
}

// IsFailure returns true if the error is un-coded, or if the error contains
// a failure code.
func IsFailure(err error) bool {
	if err == nil {
		return false
	}

	coded, isFailure := findImportantCodedError(err)
	return coded == nil || isFailure
}

// SplitErrorTypes splits the error into fatal (failures) and non-fatal errors
func SplitErrorTypes(inp error) (err CodedError, failure CodedFailure) {
	if inp == nil {
		return nil, nil
	}

	coded, isFailure := findImportantCodedError(inp)
	if coded == nil {
		return nil, NewUnknownFailure(inp)
	}

	if isFailure {
		return nil, WrapCodedFailure(
			coded.Code(),
			inp,
			"failure caused by")
	}

	return WrapCodedError(
		coded.Code(),
		inp,
		"error caused by"), nil
}

// HasErrorCode returns true if the error or any of its wrapped errors has
// the given code.
func HasErrorCode(err error, code ErrorCode) bool {
	return Find(err, code) != nil
}

// Find recursively unwraps the error and returns the first CodedError that
// matches the given error code.
func Find(originalErr error, code ErrorCode) CodedError {
	if originalErr == nil {
		return nil
	}

	// Handle non-coded errors first (go-multierror and errors.Join)
	var unwrappable UnwrappableErrors
	if As(originalErr, &unwrappable) {
		for _, innerErr := range unwrappable.Unwrap() {
			found := Find(innerErr, code)
			if found != nil {
				return found
			}
		}

		return nil
	}

	var coded CodedError
	if !As(originalErr, &coded) {
		return nil
	}

	if coded.Code() == code {
		return coded
	}

	return Find(coded.Unwrap(), code)
}

type codedError struct {
	code ErrorCode

	err error
}

var _ CodedError = codedError{}

func newError(
	code ErrorCode,
	rootCause error,
) codedError {
	return codedError{
		code: code,
		err:  rootCause,
	}
}

func wrapError(
	code ErrorCode,
	err error,
	prefixMsgFormat string,
	formatArguments ...interface{},
) codedError {
	if prefixMsgFormat != "" {
		msg := fmt.Sprintf(prefixMsgFormat, formatArguments...)
		err = fmt.Errorf("%s: %w", msg, err)
	}
	return newError(code, err)
}

func (err codedError) Unwrap() error {
	return err.err
}

func (err codedError) Error() string {
	return fmt.Sprintf("%v %v", err.code, err.err)
}

func (err codedError) Code() ErrorCode {
	return err.code
}

// NewCodedError creates a new CodedError with the given error code.
func NewCodedError(
	code ErrorCode,
	format string,
	formatArguments ...interface{},
) CodedError {
	return newError(code, fmt.Errorf(format, formatArguments...))
}

// WrapCodedError creates a new CodedError which wraps err with the given
// error code.
func WrapCodedError(
	code ErrorCode,
	err error,
	prefixMsgFormat string,
	formatArguments ...interface{},
) CodedError {
	return wrapError(code, err, prefixMsgFormat, formatArguments...)
}

type codedFailure struct {
	codedError
}

var _ CodedFailure = codedFailure{}

func (codedFailure) isFailure() {}

// NewCodedFailure creates a new CodedFailure with the given failure code.
func NewCodedFailure(
	code ErrorCode,
	format string,
	formatArguments ...interface{},
) CodedFailure {
	return codedFailure{newError(code, fmt.Errorf(format, formatArguments...))}
}

// WrapCodedFailure creates a new CodedFailure which wraps err with the given
// failure code.
func WrapCodedFailure(
	code ErrorCode,
	err error,
	prefixMsgFormat string,
	formatArguments ...interface{},
) CodedFailure {
	return codedFailure{wrapError(code, err, prefixMsgFormat, formatArguments...)}
}
