package mbtcp

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/arloliu/go-modbus/modbus"
)

// Modbus TCP framing limits.
const (
	mbapHeaderLen = 7
	maxPDULen     = 253

	maxReadRegisters  = 125
	maxWriteRegisters = 123
	maxReadBits       = 2000
	maxWriteBits      = 1968
)

// tcpTransport is the default modbus.Transport over Modbus TCP (MBAP)
// framing. It is geometry-only: it builds request frames and validates raw
// response frames, classifying malformed responses into the modbus error
// domain for the session's retry policy.
//
// It reads the connection directly without buffering, so the bytes the
// session drains after a data error are exactly the bytes the device sent.
//
// tcpTransport is NOT goroutine-safe; the session serializes access.
type tcpTransport struct {
	addr            string
	connectTimeout  time.Duration
	responseTimeout time.Duration
	unitID          uint8

	conn net.Conn
	tid  uint16
}

var _ modbus.Transport = (*tcpTransport)(nil)

func newTCPTransport(cfg *ClientConfig) *tcpTransport {
	return &tcpTransport{
		addr:            cfg.Addr(),
		connectTimeout:  cfg.connectTimeout,
		responseTimeout: cfg.responseTimeout,
		unitID:          cfg.unitID,
	}
}

// Connect dials the device endpoint. Connecting an already connected
// transport is a no-op.
func (t *tcpTransport) Connect() error {
	if t.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout("tcp", t.addr, t.connectTimeout)
	if err != nil {
		return err
	}

	t.conn = conn

	// Randomize the starting transaction ID (best effort).
	var b [2]byte
	if _, err := rand.Read(b[:]); err == nil {
		t.tid = binary.BigEndian.Uint16(b[:])
	}

	return nil
}

// Close closes the stream connection. Closing an unconnected transport is a
// no-op.
func (t *tcpTransport) Close() error {
	if t.conn == nil {
		return nil
	}

	conn := t.conn
	t.conn = nil

	return conn.Close()
}

// Conn returns the underlying stream connection, or nil when not connected.
func (t *tcpTransport) Conn() net.Conn { return t.conn }

// SetUnitID sets the target unit (slave) ID for subsequent requests.
func (t *tcpTransport) SetUnitID(id uint8) error {
	if id > MaxUnitID {
		return fmt.Errorf("mbtcp: unit ID %d exceeds maximum %d", id, MaxUnitID)
	}
	t.unitID = id

	return nil
}

// SetResponseTimeout sets the per-request response timeout.
func (t *tcpTransport) SetResponseTimeout(timeout time.Duration) {
	if timeout > 0 {
		t.responseTimeout = timeout
	}
}

// --- Primitive operations ---

func (t *tcpTransport) ReadRegisters(addr uint16, quantity uint16) ([]uint16, error) {
	if quantity == 0 || quantity > maxReadRegisters {
		return nil, fmt.Errorf("mbtcp: read quantity %d out of range [1, %d]", quantity, maxReadRegisters)
	}

	var req [4]byte
	binary.BigEndian.PutUint16(req[0:2], addr)
	binary.BigEndian.PutUint16(req[2:4], quantity)

	payload, err := t.roundTrip(modbus.FuncReadHoldingRegisters, req[:])
	if err != nil {
		return nil, err
	}

	data, err := checkReadPayload(payload, int(quantity)*2)
	if err != nil {
		return nil, err
	}

	return modbus.UnpackRegisters(data), nil
}

func (t *tcpTransport) WriteRegister(addr uint16, value uint16) error {
	var req [4]byte
	binary.BigEndian.PutUint16(req[0:2], addr)
	binary.BigEndian.PutUint16(req[2:4], value)

	payload, err := t.roundTrip(modbus.FuncWriteSingleRegister, req[:])
	if err != nil {
		return err
	}

	return checkWriteEcho(payload, addr, value)
}

func (t *tcpTransport) WriteRegisters(addr uint16, values []uint16) error {
	quantity := len(values)
	if quantity == 0 || quantity > maxWriteRegisters {
		return fmt.Errorf("mbtcp: write quantity %d out of range [1, %d]", quantity, maxWriteRegisters)
	}

	data := modbus.PackRegisters(values)
	req := make([]byte, 5+len(data))
	binary.BigEndian.PutUint16(req[0:2], addr)
	binary.BigEndian.PutUint16(req[2:4], uint16(quantity))
	req[4] = byte(len(data))
	copy(req[5:], data)

	payload, err := t.roundTrip(modbus.FuncWriteMultipleRegisters, req)
	if err != nil {
		return err
	}

	return checkWriteEcho(payload, addr, uint16(quantity))
}

func (t *tcpTransport) ReadBits(addr uint16, quantity uint16) ([]byte, error) {
	if quantity == 0 || quantity > maxReadBits {
		return nil, fmt.Errorf("mbtcp: read quantity %d out of range [1, %d]", quantity, maxReadBits)
	}

	var req [4]byte
	binary.BigEndian.PutUint16(req[0:2], addr)
	binary.BigEndian.PutUint16(req[2:4], quantity)

	payload, err := t.roundTrip(modbus.FuncReadCoils, req[:])
	if err != nil {
		return nil, err
	}

	return checkReadPayload(payload, (int(quantity)+7)/8)
}

func (t *tcpTransport) WriteBit(addr uint16, on bool) error {
	value := modbus.CoilOff
	if on {
		value = modbus.CoilOn
	}

	var req [4]byte
	binary.BigEndian.PutUint16(req[0:2], addr)
	binary.BigEndian.PutUint16(req[2:4], value)

	payload, err := t.roundTrip(modbus.FuncWriteSingleCoil, req[:])
	if err != nil {
		return err
	}

	return checkWriteEcho(payload, addr, value)
}

func (t *tcpTransport) WriteBits(addr uint16, quantity uint16, values []byte) error {
	if quantity == 0 || quantity > maxWriteBits {
		return fmt.Errorf("mbtcp: write quantity %d out of range [1, %d]", quantity, maxWriteBits)
	}

	byteCount := (int(quantity) + 7) / 8
	if len(values) < byteCount {
		return fmt.Errorf("mbtcp: %d packed bytes for %d coils, want %d", len(values), quantity, byteCount)
	}

	req := make([]byte, 5+byteCount)
	binary.BigEndian.PutUint16(req[0:2], addr)
	binary.BigEndian.PutUint16(req[2:4], quantity)
	req[4] = byte(byteCount)
	copy(req[5:], values[:byteCount])

	payload, err := t.roundTrip(modbus.FuncWriteMultipleCoils, req)
	if err != nil {
		return err
	}

	return checkWriteEcho(payload, addr, quantity)
}

// --- Request/response framing ---

// roundTrip sends one request PDU and reads the matching response PDU,
// returning the payload after the function code.
//
// MBAP header: TID(2) PID(2) LEN(2) UID(1). LEN counts the unit ID and PDU.
func (t *tcpTransport) roundTrip(fc byte, req []byte) ([]byte, error) {
	if t.conn == nil {
		return nil, errors.New("mbtcp: transport not connected")
	}

	t.tid++
	tid := t.tid

	adu := make([]byte, mbapHeaderLen+1+len(req))
	binary.BigEndian.PutUint16(adu[0:2], tid)
	binary.BigEndian.PutUint16(adu[2:4], 0)
	binary.BigEndian.PutUint16(adu[4:6], uint16(2+len(req)))
	adu[6] = t.unitID
	adu[7] = fc
	copy(adu[8:], req)

	if err := t.conn.SetWriteDeadline(time.Now().Add(t.responseTimeout)); err != nil {
		return nil, err
	}
	if _, err := t.conn.Write(adu); err != nil {
		return nil, err
	}

	var header [mbapHeaderLen]byte
	if err := t.readFull(header[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint16(header[4:6])
	if length < 2 || int(length) > maxPDULen+1 {
		return nil, fmt.Errorf("%w: response length %d", modbus.ErrBadData, length)
	}

	body := make([]byte, int(length)-1)
	if err := t.readFull(body); err != nil {
		return nil, err
	}
	_ = t.conn.SetReadDeadline(time.Time{})

	if respTID := binary.BigEndian.Uint16(header[0:2]); respTID != tid {
		return nil, fmt.Errorf("%w: transaction id %d, want %d", modbus.ErrBadData, respTID, tid)
	}
	if respPID := binary.BigEndian.Uint16(header[2:4]); respPID != 0 {
		return nil, fmt.Errorf("%w: protocol id %d, want 0", modbus.ErrBadData, respPID)
	}
	if header[6] != t.unitID {
		return nil, fmt.Errorf("%w: unit id %d, want %d", modbus.ErrBadData, header[6], t.unitID)
	}

	respFC := body[0]
	switch {
	case respFC == fc:
		return body[1:], nil

	case respFC == fc|0x80:
		if len(body) < 2 {
			return nil, fmt.Errorf("%w: truncated exception frame", modbus.ErrBadException)
		}
		code := body[1]
		if !modbus.KnownException(code) {
			return nil, fmt.Errorf("%w: code %d", modbus.ErrUnknownException, code)
		}

		return nil, &modbus.ExceptionError{Function: fc, Code: code}

	case respFC&0x80 != 0:
		return nil, fmt.Errorf("%w: exception for function %d, want %d", modbus.ErrBadException, respFC&0x7F, fc)

	default:
		return nil, fmt.Errorf("%w: function %d, want %d", modbus.ErrBadData, respFC, fc)
	}
}

// readFull reads exactly len(buf) bytes, resetting the response timeout as a
// per-read-call deadline. On TCP a single Read may return multiple bytes, so
// the deadline restarts after each chunk of data.
func (t *tcpTransport) readFull(buf []byte) error {
	for read := 0; read < len(buf); {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.responseTimeout)); err != nil {
			return err
		}

		n, err := t.conn.Read(buf[read:])
		read += n

		if err != nil {
			return err
		}
	}

	return nil
}

// checkReadPayload validates the byte-count header of a read response and
// returns the data bytes.
func checkReadPayload(payload []byte, want int) ([]byte, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("%w: empty read payload", modbus.ErrBadData)
	}

	byteCount := int(payload[0])
	data := payload[1:]

	if byteCount > want {
		return nil, fmt.Errorf("%w: byte count %d, want %d", modbus.ErrTooManyData, byteCount, want)
	}
	if byteCount != want || len(data) != byteCount {
		return nil, fmt.Errorf("%w: byte count %d (%d data bytes), want %d", modbus.ErrBadData, byteCount, len(data), want)
	}

	return data, nil
}

// checkWriteEcho validates the address/value echo of a write response.
func checkWriteEcho(payload []byte, addr uint16, value uint16) error {
	if len(payload) != 4 {
		return fmt.Errorf("%w: write echo length %d, want 4", modbus.ErrBadData, len(payload))
	}

	echoAddr := binary.BigEndian.Uint16(payload[0:2])
	echoValue := binary.BigEndian.Uint16(payload[2:4])
	if echoAddr != addr || echoValue != value {
		return fmt.Errorf("%w: write echo %d/%d, want %d/%d", modbus.ErrBadData, echoAddr, echoValue, addr, value)
	}

	return nil
}
