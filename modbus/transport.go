package modbus

import (
	"net"
	"time"
)

// Transport is the primitive protocol layer driven by the mbtcp session.
//
// Implementations own the wire encoding of the protocol and the stream
// connection; the session layer owns lifecycle, retry, and resynchronization
// policy. All operations are blocking and return a structured error that the
// session classifies with IsDataError; implementations must not rely on
// ambient error state.
//
// A Transport is not required to be goroutine-safe. The session guarantees
// that at most one operation is in flight at a time.
type Transport interface {
	// Connect opens the stream connection to the device endpoint.
	Connect() error

	// Close closes the stream connection. Closing an unconnected transport
	// is a no-op.
	Close() error

	// Conn returns the underlying stream connection, or nil when the
	// transport is not connected. The session uses it to drain stale bytes
	// after a data-layer error; implementations must therefore not keep
	// read-side buffering of their own between requests.
	Conn() net.Conn

	// SetUnitID sets the target unit (slave) address for subsequent requests.
	SetUnitID(id uint8) error

	// SetResponseTimeout sets how long a request waits for the device
	// response before failing.
	SetResponseTimeout(timeout time.Duration)

	// ReadRegisters reads quantity holding registers starting at addr.
	ReadRegisters(addr uint16, quantity uint16) ([]uint16, error)

	// WriteRegister writes a single holding register.
	WriteRegister(addr uint16, value uint16) error

	// WriteRegisters writes len(values) holding registers starting at addr.
	WriteRegisters(addr uint16, values []uint16) error

	// ReadBits reads quantity coils starting at addr, returned in the packed
	// byte representation (8 coils per byte, LSB first).
	ReadBits(addr uint16, quantity uint16) ([]byte, error)

	// WriteBit writes a single coil.
	WriteBit(addr uint16, on bool) error

	// WriteBits writes quantity coils starting at addr from the packed byte
	// representation.
	WriteBits(addr uint16, quantity uint16, values []byte) error
}
