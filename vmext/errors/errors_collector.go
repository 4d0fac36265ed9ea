package errors

import (
	"github.com/hashicorp/go-multierror"
)

// ErrorsCollector collects all errors that occurred during execution of a
// request.  Once a failure is collected, the collected error is a failure
// regardless of what else is collected.
type ErrorsCollector struct {
	errors       error
	failureIsSet bool
	failureErr   error
}

func NewErrorsCollector() *ErrorsCollector {
	return &ErrorsCollector{}
}

func (collector *ErrorsCollector) CollectedFailure() bool {
	return collector.failureIsSet
}

func (collector *ErrorsCollector) CollectedError() bool {
	return collector.errors != nil
}

func (collector *ErrorsCollector) Collect(err error) *ErrorsCollector {
	if err == nil {
		return collector
	}

	if collector.failureIsSet {
		collector.errors = multierror.Append(collector.errors, err)
		return collector
	}

	if IsFailure(err) {
		collector.failureIsSet = true
		collector.failureErr = err
		collector.errors = multierror.Append(collector.errors, err)
		return collector
	}

	if collector.errors == nil {
		collector.errors = err
	} else {
		collector.errors = multierror.Append(collector.errors, err)
	}

	return collector
}

// ErrorOrNil returns nil if no error was collected, otherwise a coded error
// or coded failure.  The code of the first collected failure wins over any
// non-fatal error code.
func (collector *ErrorsCollector) ErrorOrNil() error {
	if collector.errors == nil {
		return nil
	}

	if !collector.failureIsSet {
		return collector.errors
	}

	_, failure := SplitErrorTypes(collector.failureErr)
	return WrapCodedFailure(
		failure.Code(),
		collector.errors,
		"failure caused by")
}
