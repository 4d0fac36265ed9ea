package errors

import "fmt"

type ErrorCode uint16

// IsFailure returns true for codes in the failure range.  Failures are fatal
// to the session; every other code is contained in an execution status.
func (ec ErrorCode) IsFailure() bool {
	return ec >= FailureCodeUnknownFailure
}

func (ec ErrorCode) String() string {
	if ec.IsFailure() {
		return fmt.Sprintf("[Failure Code: %d]", uint16(ec))
	}
	return fmt.Sprintf("[Error Code: %d]", uint16(ec))
}

const (
	FailureCodeUnknownFailure             ErrorCode = 2000
	FailureCodeEncodingFailure            ErrorCode = 2001
	FailureCodeResolverUnavailableFailure ErrorCode = 2002
	FailureCodeStateMergeFailure          ErrorCode = 2003
	FailureCodeConfigurationFailure       ErrorCode = 2004
	FailureCodeInvalidStateFailure        ErrorCode = 2005
)

const (
	// base errors 1050 - 1100
	ErrCodeValueError                 ErrorCode = 1051
	ErrCodeInvalidArgumentError       ErrorCode = 1052
	ErrCodeInvalidAddressError        ErrorCode = 1053
	ErrCodeOperationNotSupportedError ErrorCode = 1057

	// execution errors 1100 - 1200
	ErrCodeMissingDataError              ErrorCode = 1100
	ErrCodeLinkerError                   ErrorCode = 1101
	ErrCodeRuntimeFaultError             ErrorCode = 1102
	ErrCodeNativeAbortError              ErrorCode = 1103
	ErrCodeComputationLimitExceededError ErrorCode = 1104
	ErrCodeEventLimitExceededError       ErrorCode = 1105
	ErrCodeWriteSetLimitExceededError    ErrorCode = 1106
	ErrCodeStateKeySizeLimitError        ErrorCode = 1107
	ErrCodeStateValueSizeLimitError      ErrorCode = 1108
	ErrCodeExecutionCancelledError       ErrorCode = 1109
	ErrCodeAggregatorOverflowError       ErrorCode = 1110

	// module errors 1250 - 1300
	ErrCodeInvalidModuleBundleError ErrorCode = 1250
	ErrCodeModuleVerificationError  ErrorCode = 1251
)
