package mbtcp

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/arloliu/go-modbus/logger"
	"github.com/arloliu/go-modbus/modbus"
)

// Default configuration values.
const (
	DefaultPort            = 502
	DefaultUnitID          = 1
	DefaultResponseTimeout = 1 * time.Second
	DefaultConnectTimeout  = 3 * time.Second
)

// MaxUnitID is the largest addressable unit (slave) ID.
const MaxUnitID = 247

// ClientConfig holds all configuration for a Modbus TCP client.
type ClientConfig struct {
	host string
	port int

	// unitID is the target sub-device address on a shared transport.
	unitID uint8

	// responseTimeout bounds how long a request waits for the device
	// response before failing.
	responseTimeout time.Duration

	// connectTimeout bounds a single TCP dial attempt.
	connectTimeout time.Duration

	// transport overrides the default TCP transport when non-nil.
	transport modbus.Transport

	logger logger.Logger
}

// NewClientConfig creates a client configuration for the given device
// endpoint.
//
// host is the device address, port the TCP port. opts are functional options
// applied in order; see With* functions.
func NewClientConfig(host string, port int, opts ...ClientOption) (*ClientConfig, error) {
	cfg := &ClientConfig{
		unitID:          DefaultUnitID,
		responseTimeout: DefaultResponseTimeout,
		connectTimeout:  DefaultConnectTimeout,
		logger:          logger.GetLogger(),
	}

	if err := cfg.setHost(host); err != nil {
		return nil, err
	}
	if err := cfg.setPort(port); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (cfg *ClientConfig) setHost(host string) error {
	if ip := net.ParseIP(host); ip != nil {
		cfg.host = host
		return nil
	}

	host = strings.TrimPrefix(host, ".")
	host = strings.TrimSuffix(host, ".")
	if _, err := net.LookupHost(host); err == nil {
		cfg.host = host
		return nil
	}

	return fmt.Errorf("mbtcp: invalid host %q", host)
}

func (cfg *ClientConfig) setPort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("mbtcp: port %d out of range [0, 65535]", port)
	}
	cfg.port = port

	return nil
}

// --- Getters ---

// Host returns the configured device address.
func (cfg *ClientConfig) Host() string { return cfg.host }

// Port returns the configured TCP port.
func (cfg *ClientConfig) Port() int { return cfg.port }

// Addr returns "host:port".
func (cfg *ClientConfig) Addr() string { return fmt.Sprintf("%s:%d", cfg.host, cfg.port) }

// UnitID returns the configured unit (slave) ID.
func (cfg *ClientConfig) UnitID() uint8 { return cfg.unitID }

// ResponseTimeout returns the per-request response timeout.
func (cfg *ClientConfig) ResponseTimeout() time.Duration { return cfg.responseTimeout }

// ConnectTimeout returns the TCP dial timeout per connect attempt.
func (cfg *ClientConfig) ConnectTimeout() time.Duration { return cfg.connectTimeout }

// GetLogger returns the configured logger.
func (cfg *ClientConfig) GetLogger() logger.Logger { return cfg.logger }

// --- ClientOption ---

// ClientOption is a functional option for configuring a ClientConfig.
type ClientOption interface {
	apply(*ClientConfig) error
}

type clientOptFunc func(*ClientConfig) error

func (f clientOptFunc) apply(cfg *ClientConfig) error { return f(cfg) }

// WithUnitID sets the target unit (slave) ID. Must be in [0, 247].
func WithUnitID(id uint8) ClientOption {
	return clientOptFunc(func(cfg *ClientConfig) error {
		if id > MaxUnitID {
			return fmt.Errorf("mbtcp: unit ID %d exceeds maximum %d", id, MaxUnitID)
		}
		cfg.unitID = id

		return nil
	})
}

// WithResponseTimeout sets how long an operation waits for the device
// response before failing.
func WithResponseTimeout(d time.Duration) ClientOption {
	return clientOptFunc(func(cfg *ClientConfig) error {
		if d <= 0 {
			return errors.New("mbtcp: response timeout must be positive")
		}
		cfg.responseTimeout = d

		return nil
	})
}

// WithConnectTimeout sets the TCP dial timeout for a single connect attempt.
func WithConnectTimeout(d time.Duration) ClientOption {
	return clientOptFunc(func(cfg *ClientConfig) error {
		if d <= 0 {
			return errors.New("mbtcp: connect timeout must be positive")
		}
		cfg.connectTimeout = d

		return nil
	})
}

// WithLogger sets the logger for the client.
func WithLogger(l logger.Logger) ClientOption {
	return clientOptFunc(func(cfg *ClientConfig) error {
		if l == nil {
			return errors.New("mbtcp: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithTransport injects a custom primitive transport, replacing the default
// Modbus TCP transport. Intended for alternate collaborator implementations
// and for tests.
func WithTransport(t modbus.Transport) ClientOption {
	return clientOptFunc(func(cfg *ClientConfig) error {
		if t == nil {
			return errors.New("mbtcp: transport must not be nil")
		}
		cfg.transport = t

		return nil
	})
}
