package modbus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsDataError(t *testing.T) {
	require := require.New(t)

	t.Run("TransientSet", func(t *testing.T) {
		for _, err := range []error{
			ErrBadData,
			ErrTooManyData,
			ErrBadChecksum,
			ErrBadException,
			ErrUnknownException,
		} {
			require.True(IsDataError(err), "%v", err)
			// Wrapped errors classify the same.
			require.True(IsDataError(fmt.Errorf("context: %w", err)))
		}
	})

	t.Run("NotTransient", func(t *testing.T) {
		require.False(IsDataError(nil))
		require.False(IsDataError(ErrNotConnected))
		require.False(IsDataError(ErrNoTransport))
		require.False(IsDataError(ErrRetryExhausted))
		require.False(IsDataError(errors.New("connection refused")))
		require.False(IsDataError(&ExceptionError{Function: FuncReadCoils, Code: ExceptionIllegalFunction}))
	})
}

func TestExceptionError(t *testing.T) {
	require := require.New(t)

	err := &ExceptionError{Function: FuncReadHoldingRegisters, Code: ExceptionIllegalDataAddress}
	require.Contains(err.Error(), "illegal data address")
	require.Contains(err.Error(), "exception 2")

	unknown := &ExceptionError{Function: FuncReadCoils, Code: 0x63}
	require.Contains(unknown.Error(), "unknown")
}

func TestKnownException(t *testing.T) {
	require := require.New(t)

	for _, code := range []byte{
		ExceptionIllegalFunction,
		ExceptionIllegalDataAddress,
		ExceptionIllegalDataValue,
		ExceptionServerDeviceFailure,
		ExceptionAcknowledge,
		ExceptionServerDeviceBusy,
		ExceptionMemoryParityError,
		ExceptionGatewayPathUnavailable,
		ExceptionGatewayTargetFailed,
	} {
		require.True(KnownException(code), "code %d", code)
		require.NotEqual("unknown", ExceptionName(code), "code %d", code)
	}

	require.False(KnownException(0))
	require.False(KnownException(7))
	require.False(KnownException(0x63))
	require.Equal("unknown", ExceptionName(0x63))
}
