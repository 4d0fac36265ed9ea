package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-vmext/model/types"
)

func TestErrorHandling(t *testing.T) {
	require.False(t, IsFailure(nil))

	t.Run("test nonfatal error detection", func(t *testing.T) {
		e1 := NewOperationNotSupportedError("some operations")
		e2 := fmt.Errorf("some other errors: %w", e1)
		e3 := NewRuntimeFaultError(e2)
		e4 := fmt.Errorf("wrapped: %w", e3)

		expectedErr := WrapCodedError(
			e1.Code(), // The root cause's error code
			e4,        // All the error message detail.
			"error caused by")

		txErr, vmErr := SplitErrorTypes(e4)
		require.Nil(t, vmErr)
		require.Equal(t, expectedErr, txErr)

		require.False(t, IsFailure(e4))
		require.False(t, IsFailure(txErr))
	})

	t.Run("test fatal error detection", func(t *testing.T) {
		e1 := NewOperationNotSupportedError("some operations")
		e2 := NewEncodingFailuref(e1, "bad encoding")
		e3 := NewResolverUnavailableFailure(e2)
		e4 := fmt.Errorf("some other errors: %w", e3)
		e5 := NewRuntimeFaultError(e4)
		e6 := fmt.Errorf("wrapped: %w", e5)

		expectedErr := WrapCodedFailure(
			e3.Code(), // The shallowest failure's error code
			e6,        // All the error message detail.
			"failure caused by")

		txErr, vmErr := SplitErrorTypes(e6)
		require.Nil(t, txErr)
		require.Equal(t, expectedErr, vmErr)

		require.True(t, IsFailure(e6))
		require.True(t, IsFailure(vmErr))
		require.True(t, IsResolverUnavailableFailure(e6))
	})

	t.Run("unknown error", func(t *testing.T) {
		e1 := fmt.Errorf("some unknown errors")
		txErr, vmErr := SplitErrorTypes(e1)
		require.Nil(t, txErr)
		require.NotNil(t, vmErr)
		require.Equal(t, FailureCodeUnknownFailure, vmErr.Code())

		require.True(t, IsFailure(e1))
	})
}

func TestErrorCodes(t *testing.T) {
	key := types.ResourceKey(
		types.MustParseAddress("0xc"),
		types.MustParseStructTag("0x1::coin::CoinStore"))

	missing := NewMissingDataErrorf(key, "account not found")
	require.True(t, IsMissingDataError(fmt.Errorf("wrapped: %w", missing)))
	require.False(t, IsFailure(missing))
	require.Contains(t, missing.Error(), "[Error Code: 1100]")

	require.True(t, IsOutOfResourceError(NewComputationLimitExceededError(10)))
	require.True(t, IsOutOfResourceError(NewEventLimitExceededError(11, 10)))
	require.True(t, IsOutOfResourceError(NewStateValueSizeLimitError(key, 11, 10)))
	require.False(t, IsOutOfResourceError(missing))

	config := NewConfigurationErrorf("duplicate native %s", "0x1::coin::transfer")
	require.True(t, IsConfigurationError(config))
	require.True(t, IsFailure(config))
	require.Contains(t, config.Error(), "[Failure Code: 2004]")

	invalid := NewInvalidStateErrorf("session already finished")
	require.True(t, IsInvalidStateError(invalid))
	require.True(t, IsFailure(invalid))

	panicked := NewHostPanicFailure("boom")
	require.True(t, IsFailure(panicked))
	require.Equal(t, FailureCodeUnknownFailure, panicked.Code())
}
