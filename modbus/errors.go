package modbus

import (
	"errors"
	"fmt"
)

// Data-layer errors reported by a Transport when a response arrives but is
// unusable. These indicate a framing or data problem on an otherwise live
// connection; after draining stale bytes from the socket, the failed request
// can safely be retried once.
var (
	// ErrBadData indicates that the response payload is inconsistent with the
	// request (wrong function echo, wrong byte count, wrong address echo).
	ErrBadData = errors.New("modbus: invalid response data")

	// ErrTooManyData indicates that the response carries more data than the
	// request asked for.
	ErrTooManyData = errors.New("modbus: response data exceeds request quantity")

	// ErrBadChecksum indicates a checksum mismatch in the response frame.
	// Modbus TCP delegates integrity to the TCP layer, so the in-repo
	// transport never produces it; serial-line transports do.
	ErrBadChecksum = errors.New("modbus: response checksum mismatch")

	// ErrBadException indicates an exception response that is itself
	// malformed (truncated, or the exception function code does not match
	// the request).
	ErrBadException = errors.New("modbus: malformed exception response")

	// ErrUnknownException indicates an exception response carrying an
	// exception code outside the ones defined by the protocol.
	ErrUnknownException = errors.New("modbus: unknown exception code")
)

// Session-level errors reported by the mbtcp client.
var (
	// ErrNotConnected is returned by operations attempted before a successful
	// Connect. The underlying primitive is never invoked.
	ErrNotConnected = errors.New("modbus: not connected")

	// ErrNoTransport is returned when the client was constructed without a
	// usable transport. The client is a dead end; every operation fails fast.
	ErrNoTransport = errors.New("modbus: transport not initialized")

	// ErrRetryExhausted is the terminal error of the bounded retry policy.
	ErrRetryExhausted = errors.New("modbus: retry exhausted")
)

// IsDataError reports whether err belongs to the data-layer transient set.
// Operations failing with such an error are retried exactly once after the
// session drains stale bytes from the socket. Everything else, including
// device exceptions and connection-level failures, is terminal.
func IsDataError(err error) bool {
	return errors.Is(err, ErrBadData) ||
		errors.Is(err, ErrTooManyData) ||
		errors.Is(err, ErrBadChecksum) ||
		errors.Is(err, ErrBadException) ||
		errors.Is(err, ErrUnknownException)
}

// ExceptionError represents a well-formed Modbus exception response: the
// device understood the request and rejected it. It is never retried.
type ExceptionError struct {
	Function byte // request function code (without the exception bit)
	Code     byte // exception code returned by the device
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus: exception %d (%s) for function %d", e.Code, ExceptionName(e.Code), e.Function)
}

// ExceptionName returns the protocol name of a known exception code, or
// "unknown" for codes outside the defined set.
func ExceptionName(code byte) string {
	switch code {
	case ExceptionIllegalFunction:
		return "illegal function"
	case ExceptionIllegalDataAddress:
		return "illegal data address"
	case ExceptionIllegalDataValue:
		return "illegal data value"
	case ExceptionServerDeviceFailure:
		return "server device failure"
	case ExceptionAcknowledge:
		return "acknowledge"
	case ExceptionServerDeviceBusy:
		return "server device busy"
	case ExceptionMemoryParityError:
		return "memory parity error"
	case ExceptionGatewayPathUnavailable:
		return "gateway path unavailable"
	case ExceptionGatewayTargetFailed:
		return "gateway target device failed to respond"
	default:
		return "unknown"
	}
}

// KnownException reports whether code is one of the exception codes defined
// by the protocol. Exception responses carrying other codes are classified as
// ErrUnknownException and treated as a data-layer transient.
func KnownException(code byte) bool {
	switch code {
	case ExceptionIllegalFunction,
		ExceptionIllegalDataAddress,
		ExceptionIllegalDataValue,
		ExceptionServerDeviceFailure,
		ExceptionAcknowledge,
		ExceptionServerDeviceBusy,
		ExceptionMemoryParityError,
		ExceptionGatewayPathUnavailable,
		ExceptionGatewayTargetFailed:
		return true
	default:
		return false
	}
}
