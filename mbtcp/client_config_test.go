package mbtcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-modbus/logger"
)

func TestNewClientConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		require := require.New(t)

		cfg, err := NewClientConfig("192.168.1.200", DefaultPort)
		require.NoError(err)
		require.Equal("192.168.1.200", cfg.Host())
		require.Equal(DefaultPort, cfg.Port())
		require.Equal("192.168.1.200:502", cfg.Addr())
		require.Equal(uint8(DefaultUnitID), cfg.UnitID())
		require.Equal(DefaultResponseTimeout, cfg.ResponseTimeout())
		require.Equal(DefaultConnectTimeout, cfg.ConnectTimeout())
		require.NotNil(cfg.GetLogger())
	})

	t.Run("InvalidHost", func(t *testing.T) {
		_, err := NewClientConfig("definitely not a host name", DefaultPort)
		require.ErrorContains(t, err, "invalid host")
	})

	t.Run("InvalidPort", func(t *testing.T) {
		_, err := NewClientConfig("127.0.0.1", 65536)
		require.ErrorContains(t, err, "out of range")

		_, err = NewClientConfig("127.0.0.1", -1)
		require.ErrorContains(t, err, "out of range")
	})

	t.Run("Options", func(t *testing.T) {
		require := require.New(t)

		l := logger.NewSlog(logger.ErrorLevel, false)
		stub := newStubTransport()

		cfg, err := NewClientConfig("127.0.0.1", 1502,
			WithUnitID(17),
			WithResponseTimeout(250*time.Millisecond),
			WithConnectTimeout(time.Second),
			WithLogger(l),
			WithTransport(stub),
		)
		require.NoError(err)
		require.Equal(uint8(17), cfg.UnitID())
		require.Equal(250*time.Millisecond, cfg.ResponseTimeout())
		require.Equal(time.Second, cfg.ConnectTimeout())
		require.Same(l, cfg.GetLogger())
	})

	t.Run("InvalidOptions", func(t *testing.T) {
		require := require.New(t)

		_, err := NewClientConfig("127.0.0.1", DefaultPort, WithUnitID(250))
		require.ErrorContains(err, "exceeds maximum")

		_, err = NewClientConfig("127.0.0.1", DefaultPort, WithResponseTimeout(0))
		require.ErrorContains(err, "must be positive")

		_, err = NewClientConfig("127.0.0.1", DefaultPort, WithConnectTimeout(-time.Second))
		require.ErrorContains(err, "must be positive")

		_, err = NewClientConfig("127.0.0.1", DefaultPort, WithLogger(nil))
		require.ErrorContains(err, "logger")

		_, err = NewClientConfig("127.0.0.1", DefaultPort, WithTransport(nil))
		require.ErrorContains(err, "transport")
	})
}
