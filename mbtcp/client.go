package mbtcp

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/arloliu/go-modbus/logger"
	"github.com/arloliu/go-modbus/modbus"
)

// Retry policy constants. These are deliberate policy, not configuration:
// the connect retry only papers over a transient would-block on the dial,
// and the data-operation retry is only sound for exactly one attempt after
// a drain.
const (
	// connectAttempts is the maximum number of dial attempts per Connect call.
	connectAttempts = 3

	// connectRetryDelay is the fixed sleep between dial attempts after a
	// would-block condition.
	connectRetryDelay = 100 * time.Millisecond

	// dataOpAttempts is the maximum number of attempts per data operation.
	dataOpAttempts = 2

	// drainReadTimeout bounds each read while draining stale bytes from the
	// socket. The drain stops at the first read that yields no data.
	drainReadTimeout = 5 * time.Millisecond
)

// Error message prefixes surfaced through LastError.
const (
	connectErrPrefix    = "Connection failed: "
	readErrPrefix       = "Read failed: "
	writeErrPrefix      = "Write failed: "
	readCoilErrPrefix   = "Read coil failed: "
	readCoilsErrPrefix  = "Read coils failed: "
	writeCoilErrPrefix  = "Write coil failed: "
	writeCoilsErrPrefix = "Write coils failed: "
	setUnitErrPrefix    = "Set unit ID failed: "
)

// Client is a resilient Modbus TCP client session for one device endpoint.
//
// It owns the underlying transport exclusively and tracks the
// connected/disconnected state. When connected, the transport is non-nil and
// its stream connection is open.
//
// Client is NOT goroutine-safe: calls must not overlap on the same instance.
// Callers needing concurrent access to multiple devices must use one Client
// per device (see Pool).
type Client struct {
	cfg       *ClientConfig
	transport modbus.Transport
	logger    logger.Logger

	connected bool
	lastErr   string

	metrics ClientMetrics
}

// NewClient creates a client for the endpoint described by cfg.
//
// The client starts disconnected; call Connect before issuing operations.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("mbtcp: client config is nil")
	}

	c := &Client{
		cfg:    cfg,
		logger: cfg.logger,
	}

	if cfg.transport != nil {
		c.transport = cfg.transport
	} else {
		c.transport = newTCPTransport(cfg)
	}

	if err := c.transport.SetUnitID(cfg.unitID); err != nil {
		return nil, fmt.Errorf("mbtcp: set unit ID: %w", err)
	}
	c.transport.SetResponseTimeout(cfg.responseTimeout)

	return c, nil
}

// Connected reports whether the session is currently connected.
func (c *Client) Connected() bool { return c.connected }

// LastError returns a description of the most recent failure. It is
// overwritten on every new failure and is not accumulated.
func (c *Client) LastError() string { return c.lastErr }

// Metrics returns the client metrics.
func (c *Client) Metrics() *ClientMetrics { return &c.metrics }

// Connect establishes the connection to the device.
//
// It is idempotent: if the session is already connected it succeeds
// immediately without touching the transport. Otherwise it dials up to three
// times, sleeping 100ms after a would-block condition; a would-block on the
// final attempt, or any other failure on any attempt, is terminal.
func (c *Client) Connect() error {
	if c.transport == nil {
		c.lastErr = modbus.ErrNoTransport.Error()
		return modbus.ErrNoTransport
	}

	if c.connected {
		return nil
	}

	for attempt := 0; attempt < connectAttempts; attempt++ {
		c.metrics.incConnAttemptCount()

		err := c.transport.Connect()
		if err == nil {
			c.connected = true
			c.logger.Debug("mbtcp: connected", "addr", c.cfg.Addr())

			return nil
		}

		if isWouldBlockError(err) && attempt < connectAttempts-1 {
			c.metrics.incConnRetryCount()
			c.logger.Debug("mbtcp: connect would block, retrying",
				"addr", c.cfg.Addr(),
				"attempt", attempt+1)
			time.Sleep(connectRetryDelay)

			continue
		}

		c.lastErr = connectErrPrefix + err.Error()
		c.logger.Error("mbtcp: connect failed", "addr", c.cfg.Addr(), "error", err)

		return fmt.Errorf("%s%w", connectErrPrefix, err)
	}

	// Unreachable: the final attempt always returns above.
	c.lastErr = connectErrPrefix + modbus.ErrRetryExhausted.Error()

	return fmt.Errorf("%s%w", connectErrPrefix, modbus.ErrRetryExhausted)
}

// Close disconnects from the device and releases the stream connection.
//
// It is idempotent: closing a disconnected client is a no-op. The client can
// be reconnected afterwards with Connect.
func (c *Client) Close() error {
	if c.transport == nil || !c.connected {
		return nil
	}

	c.connected = false
	if err := c.transport.Close(); err != nil {
		c.logger.Error("mbtcp: close failed", "addr", c.cfg.Addr(), "error", err)
		return err
	}

	c.logger.Debug("mbtcp: disconnected", "addr", c.cfg.Addr())

	return nil
}

// SetUnitID sets the target unit (slave) ID for subsequent operations.
func (c *Client) SetUnitID(id uint8) error {
	if c.transport == nil {
		c.lastErr = modbus.ErrNoTransport.Error()
		return modbus.ErrNoTransport
	}

	if err := c.transport.SetUnitID(id); err != nil {
		c.lastErr = setUnitErrPrefix + err.Error()
		return fmt.Errorf("%s%w", setUnitErrPrefix, err)
	}

	return nil
}

// SetResponseTimeout sets how long an operation waits for the device
// response before failing. Advisory: it is a silent no-op when the client
// has no transport.
func (c *Client) SetResponseTimeout(timeout time.Duration) {
	if c.transport == nil {
		return
	}

	c.transport.SetResponseTimeout(timeout)
}

// --- Register operations ---

// ReadRegister reads a single holding register.
func (c *Client) ReadRegister(addr uint16) (uint16, error) {
	var value uint16
	err := c.execute(readErrPrefix, func() error {
		regs, err := c.transport.ReadRegisters(addr, 1)
		if err != nil {
			return err
		}
		if len(regs) != 1 {
			return fmt.Errorf("%w: got %d registers, want 1", modbus.ErrBadData, len(regs))
		}
		value = regs[0]

		return nil
	})
	if err != nil {
		return 0, err
	}

	return value, nil
}

// ReadRegisters reads quantity holding registers starting at addr.
func (c *Client) ReadRegisters(addr uint16, quantity uint16) ([]uint16, error) {
	var values []uint16
	err := c.execute(readErrPrefix, func() error {
		regs, err := c.transport.ReadRegisters(addr, quantity)
		if err != nil {
			return err
		}
		values = regs

		return nil
	})
	if err != nil {
		return nil, err
	}

	return values, nil
}

// WriteRegister writes a single holding register.
func (c *Client) WriteRegister(addr uint16, value uint16) error {
	return c.execute(writeErrPrefix, func() error {
		return c.transport.WriteRegister(addr, value)
	})
}

// WriteRegisters writes len(values) holding registers starting at addr.
func (c *Client) WriteRegisters(addr uint16, values []uint16) error {
	return c.execute(writeErrPrefix, func() error {
		return c.transport.WriteRegisters(addr, values)
	})
}

// --- Coil operations ---

// ReadCoil reads a single coil and translates the packed byte representation
// into a boolean.
func (c *Client) ReadCoil(addr uint16) (bool, error) {
	var on bool
	err := c.execute(readCoilErrPrefix, func() error {
		bits, err := c.transport.ReadBits(addr, 1)
		if err != nil {
			return err
		}
		if len(bits) == 0 {
			return fmt.Errorf("%w: empty coil payload", modbus.ErrBadData)
		}
		on = bits[0]&0x01 != 0

		return nil
	})
	if err != nil {
		return false, err
	}

	return on, nil
}

// ReadCoils reads quantity coils starting at addr in the packed byte
// representation (8 coils per byte, LSB first). Use modbus.UnpackBits to
// expand the result.
func (c *Client) ReadCoils(addr uint16, quantity uint16) ([]byte, error) {
	var values []byte
	err := c.execute(readCoilsErrPrefix, func() error {
		bits, err := c.transport.ReadBits(addr, quantity)
		if err != nil {
			return err
		}
		values = bits

		return nil
	})
	if err != nil {
		return nil, err
	}

	return values, nil
}

// WriteCoil writes a single coil.
func (c *Client) WriteCoil(addr uint16, on bool) error {
	return c.execute(writeCoilErrPrefix, func() error {
		return c.transport.WriteBit(addr, on)
	})
}

// WriteCoils writes quantity coils starting at addr from the packed byte
// representation. Use modbus.PackBits to build values.
func (c *Client) WriteCoils(addr uint16, quantity uint16, values []byte) error {
	return c.execute(writeCoilsErrPrefix, func() error {
		return c.transport.WriteBits(addr, quantity, values)
	})
}

// --- Retry policy ---

// execute applies the uniform retry policy to op.
//
// The session must be connected; otherwise the primitive is never invoked.
// A first-attempt failure classified as a data-layer transient triggers a
// best-effort socket drain and exactly one retry. The second failure, or any
// non-retryable failure, is terminal: lastErr is set to prefix plus the
// underlying description and the wrapped error is returned. No other session
// state changes on failure.
func (c *Client) execute(prefix string, op func() error) error {
	if c.transport == nil {
		c.lastErr = modbus.ErrNoTransport.Error()
		return modbus.ErrNoTransport
	}

	if !c.connected {
		c.lastErr = "Not connected"
		return modbus.ErrNotConnected
	}

	for attempt := 0; attempt < dataOpAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		if attempt == 0 && modbus.IsDataError(err) {
			drained := c.drainPending()
			c.metrics.incOpRetryCount()
			c.logger.Debug("mbtcp: data error, drained socket and retrying",
				"error", err,
				"drained", drained)

			continue
		}

		c.lastErr = prefix + err.Error()
		c.metrics.incOpErrCount()

		return fmt.Errorf("%s%w", prefix, err)
	}

	// Unreachable with two attempts: the second iteration always returns.
	c.lastErr = prefix + "retry exhausted"
	c.metrics.incOpErrCount()

	return fmt.Errorf("%s%w", prefix, modbus.ErrRetryExhausted)
}

// drainPending reads and discards any bytes buffered on the transport's
// stream connection, stopping at the first read that yields no data, an EOF,
// or a read error. It resynchronizes the transport after a data-layer error
// so that a stale partial response cannot be matched to the next request.
//
// Best-effort: it never fails visibly and returns the number of bytes
// discarded.
func (c *Client) drainPending() int {
	conn := c.transport.Conn()
	if conn == nil {
		return 0
	}

	var buf [256]byte
	total := 0

	for {
		if err := conn.SetReadDeadline(time.Now().Add(drainReadTimeout)); err != nil {
			break
		}

		n, err := conn.Read(buf[:])
		total += n
		if err != nil || n == 0 {
			break
		}
	}

	_ = conn.SetReadDeadline(time.Time{})

	if total > 0 {
		c.metrics.addDrainedBytes(total)
	}

	return total
}

// isWouldBlockError reports whether err is a would-block condition from a
// non-blocking dial. Timeouts and refusals are not would-block: they are
// terminal on connect.
func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN)
}
