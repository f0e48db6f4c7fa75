package mbtcp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	newStubFactory := func(stubs map[string]*stubTransport) ClientFactory {
		return func(endpoint string) (*Client, error) {
			stub := newStubTransport()
			stubs[endpoint] = stub

			cfg, err := NewClientConfig("127.0.0.1", DefaultPort, WithTransport(stub))
			if err != nil {
				return nil, err
			}

			return NewClient(cfg)
		}
	}

	t.Run("OneClientPerEndpoint", func(t *testing.T) {
		require := require.New(t)

		stubs := make(map[string]*stubTransport)
		pool, err := NewPool(newStubFactory(stubs))
		require.NoError(err)

		a1, err := pool.Get("10.0.0.1:502")
		require.NoError(err)
		a2, err := pool.Get("10.0.0.1:502")
		require.NoError(err)
		require.Same(a1, a2)

		b, err := pool.Get("10.0.0.2:502")
		require.NoError(err)
		require.NotSame(a1, b)
		require.Equal(2, pool.Len())
		require.Len(stubs, 2)
	})

	t.Run("FactoryError", func(t *testing.T) {
		require := require.New(t)

		wantErr := errors.New("boom")
		pool, err := NewPool(func(endpoint string) (*Client, error) {
			return nil, wantErr
		})
		require.NoError(err)

		_, err = pool.Get("10.0.0.1:502")
		require.ErrorIs(err, wantErr)
		require.Equal(0, pool.Len())
	})

	t.Run("CloseRemoves", func(t *testing.T) {
		require := require.New(t)

		stubs := make(map[string]*stubTransport)
		pool, err := NewPool(newStubFactory(stubs))
		require.NoError(err)

		client, err := pool.Get("10.0.0.1:502")
		require.NoError(err)
		require.NoError(client.Connect())

		require.NoError(pool.Close("10.0.0.1:502"))
		require.Equal(0, pool.Len())
		require.Equal(1, stubs["10.0.0.1:502"].closeCount)

		// Unknown endpoints are a no-op.
		require.NoError(pool.Close("10.0.0.9:502"))
	})

	t.Run("CloseAll", func(t *testing.T) {
		require := require.New(t)

		stubs := make(map[string]*stubTransport)
		pool, err := NewPool(newStubFactory(stubs))
		require.NoError(err)

		for _, endpoint := range []string{"10.0.0.1:502", "10.0.0.2:502", "10.0.0.3:502"} {
			client, err := pool.Get(endpoint)
			require.NoError(err)
			require.NoError(client.Connect())
		}

		require.NoError(pool.CloseAll())
		require.Equal(0, pool.Len())
		for endpoint, stub := range stubs {
			require.Equal(1, stub.closeCount, "endpoint %s", endpoint)
		}
	})

	t.Run("NilFactory", func(t *testing.T) {
		_, err := NewPool(nil)
		require.Error(t, err)
	})

	t.Run("DefaultClientFactory", func(t *testing.T) {
		require := require.New(t)

		factory := DefaultClientFactory()

		_, err := factory("not-an-endpoint")
		require.ErrorContains(err, "invalid endpoint")

		_, err = factory("127.0.0.1:bad")
		require.Error(err)

		client, err := factory("127.0.0.1:1502")
		require.NoError(err)
		require.False(client.Connected())
	})
}
