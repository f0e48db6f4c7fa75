package relay

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-modbus/mbtcp"
	"github.com/arloliu/go-modbus/modbus"
)

// coilTransport is a coil-only device model recording every write address.
type coilTransport struct {
	coils      map[uint16]bool
	writeAddrs []uint16
}

var _ modbus.Transport = (*coilTransport)(nil)

func newCoilTransport() *coilTransport {
	return &coilTransport{coils: make(map[uint16]bool)}
}

func (c *coilTransport) Connect() error                       { return nil }
func (c *coilTransport) Close() error                         { return nil }
func (c *coilTransport) Conn() net.Conn                       { return nil }
func (c *coilTransport) SetUnitID(id uint8) error             { return nil }
func (c *coilTransport) SetResponseTimeout(_ time.Duration)   {}
func (c *coilTransport) WriteRegister(_, _ uint16) error      { return nil }
func (c *coilTransport) WriteRegisters(_ uint16, _ []uint16) error {
	return nil
}

func (c *coilTransport) ReadRegisters(_ uint16, quantity uint16) ([]uint16, error) {
	return make([]uint16, quantity), nil
}

func (c *coilTransport) ReadBits(addr uint16, quantity uint16) ([]byte, error) {
	bits := make([]bool, quantity)
	for i := range bits {
		bits[i] = c.coils[addr+uint16(i)]
	}

	return modbus.PackBits(bits), nil
}

func (c *coilTransport) WriteBit(addr uint16, on bool) error {
	c.writeAddrs = append(c.writeAddrs, addr)
	if addr == BroadcastAddress {
		// The device interprets the reserved address as "all channels".
		for ch := 0; ch < DefaultChannels; ch++ {
			c.coils[uint16(ch)] = on
		}

		return nil
	}

	c.coils[addr] = on

	return nil
}

func (c *coilTransport) WriteBits(addr uint16, quantity uint16, values []byte) error {
	for i, on := range modbus.UnpackBits(values, int(quantity)) {
		c.coils[addr+uint16(i)] = on
	}

	return nil
}

func newTestBank(t *testing.T) (*Bank, *coilTransport) {
	t.Helper()

	stub := newCoilTransport()

	cfg, err := mbtcp.NewClientConfig("127.0.0.1", mbtcp.DefaultPort, mbtcp.WithTransport(stub))
	require.NoError(t, err)

	client, err := mbtcp.NewClient(cfg)
	require.NoError(t, err)
	require.NoError(t, client.Connect())

	bank, err := NewBank(client, DefaultChannels)
	require.NoError(t, err)

	return bank, stub
}

func TestNewBank(t *testing.T) {
	require := require.New(t)

	_, err := NewBank(nil, DefaultChannels)
	require.ErrorContains(err, "client is nil")

	bank, stub := newTestBank(t)
	require.Equal(DefaultChannels, bank.Channels())
	_ = stub

	client, err := mbtcp.NewClient(mustConfig(t))
	require.NoError(err)

	_, err = NewBank(client, 0)
	require.ErrorContains(err, "out of range")
	_, err = NewBank(client, int(BroadcastAddress)+1)
	require.ErrorContains(err, "out of range")
}

func mustConfig(t *testing.T) *mbtcp.ClientConfig {
	t.Helper()

	cfg, err := mbtcp.NewClientConfig("127.0.0.1", mbtcp.DefaultPort, mbtcp.WithTransport(newCoilTransport()))
	require.NoError(t, err)

	return cfg
}

func TestBankSetAndState(t *testing.T) {
	require := require.New(t)

	bank, stub := newTestBank(t)

	require.NoError(bank.On(3))
	require.True(stub.coils[3])

	on, err := bank.State(3)
	require.NoError(err)
	require.True(on)

	require.NoError(bank.Off(3))
	on, err = bank.State(3)
	require.NoError(err)
	require.False(on)

	t.Run("ChannelRange", func(t *testing.T) {
		require.ErrorContains(bank.Set(-1, true), "out of range")
		require.ErrorContains(bank.Set(DefaultChannels, true), "out of range")

		_, err := bank.State(DefaultChannels)
		require.ErrorContains(err, "out of range")
	})
}

func TestBankBroadcast(t *testing.T) {
	require := require.New(t)

	bank, stub := newTestBank(t)

	require.NoError(bank.AllOn())
	require.Equal([]uint16{BroadcastAddress}, stub.writeAddrs)

	states, err := bank.States()
	require.NoError(err)
	require.Len(states, DefaultChannels)
	for ch, on := range states {
		require.True(on, "channel %d", ch)
	}

	require.NoError(bank.AllOff())

	states, err = bank.States()
	require.NoError(err)
	for ch, on := range states {
		require.False(on, "channel %d", ch)
	}
}
