package mbtcp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// ClientFactory creates a client for a "host:port" endpoint.
type ClientFactory func(endpoint string) (*Client, error)

// DefaultClientFactory returns a ClientFactory that builds clients with
// NewClientConfig and the given options.
func DefaultClientFactory(opts ...ClientOption) ClientFactory {
	return func(endpoint string) (*Client, error) {
		host, portStr, err := net.SplitHostPort(endpoint)
		if err != nil {
			return nil, fmt.Errorf("mbtcp: invalid endpoint %q: %w", endpoint, err)
		}

		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("mbtcp: invalid endpoint port %q: %w", portStr, err)
		}

		cfg, err := NewClientConfig(host, port, opts...)
		if err != nil {
			return nil, err
		}

		return NewClient(cfg)
	}
}

// Pool manages one client session per device endpoint.
//
// A Client itself is not goroutine-safe, but the pool lookup is: concurrent
// goroutines may resolve different endpoints through the same pool, as long
// as each resulting client is used by one goroutine at a time.
type Pool struct {
	mu      sync.Mutex // serializes client creation
	clients *xsync.MapOf[string, *Client]
	factory ClientFactory
}

// NewPool creates a pool that builds missing clients with factory.
func NewPool(factory ClientFactory) (*Pool, error) {
	if factory == nil {
		return nil, errors.New("mbtcp: client factory is nil")
	}

	return &Pool{
		clients: xsync.NewMapOf[string, *Client](),
		factory: factory,
	}, nil
}

// Get returns the client for endpoint, creating it on first use.
func (p *Pool) Get(endpoint string) (*Client, error) {
	if client, ok := p.clients.Load(endpoint); ok {
		return client, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients.Load(endpoint); ok {
		return client, nil
	}

	client, err := p.factory(endpoint)
	if err != nil {
		return nil, err
	}

	p.clients.Store(endpoint, client)

	return client, nil
}

// Close closes and removes the client for endpoint. Unknown endpoints are a
// no-op.
func (p *Pool) Close(endpoint string) error {
	client, ok := p.clients.LoadAndDelete(endpoint)
	if !ok {
		return nil
	}

	return client.Close()
}

// CloseAll closes every client and empties the pool, returning the first
// close error encountered.
func (p *Pool) CloseAll() error {
	var firstErr error

	p.clients.Range(func(endpoint string, client *Client) bool {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.clients.Delete(endpoint)

		return true
	})

	return firstErr
}

// Len returns the number of clients currently in the pool.
func (p *Pool) Len() int {
	return p.clients.Size()
}
