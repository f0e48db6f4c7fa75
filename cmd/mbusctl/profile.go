package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/go-modbus/mbtcp"
	"github.com/arloliu/go-modbus/relay"
)

const defaultRelayChannels = relay.DefaultChannels

// Profile describes one device endpoint in a YAML profile file:
//
//	host: 192.168.1.200
//	port: 502
//	unit_id: 1
//	response_timeout_ms: 1000
//	relay_channels: 8
type Profile struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	UnitID            uint8  `yaml:"unit_id"`
	ResponseTimeoutMs int    `yaml:"response_timeout_ms"`
	RelayChannels     int    `yaml:"relay_channels"`

	// ResponseTimeout is derived from ResponseTimeoutMs after loading.
	ResponseTimeout time.Duration `yaml:"-"`
}

// LoadProfile reads and validates a device profile file, filling unset
// fields with defaults.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}

	profile := &Profile{}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}

	if profile.Host == "" {
		return nil, fmt.Errorf("profile %s: host is required", path)
	}
	if profile.Port == 0 {
		profile.Port = mbtcp.DefaultPort
	}
	if profile.Port < 0 || profile.Port > 65535 {
		return nil, fmt.Errorf("profile %s: port %d out of range [0, 65535]", path, profile.Port)
	}
	if profile.ResponseTimeoutMs < 0 {
		return nil, fmt.Errorf("profile %s: response_timeout_ms must be positive", path)
	}
	if profile.ResponseTimeoutMs == 0 {
		profile.ResponseTimeout = mbtcp.DefaultResponseTimeout
	} else {
		profile.ResponseTimeout = time.Duration(profile.ResponseTimeoutMs) * time.Millisecond
	}
	if profile.RelayChannels == 0 {
		profile.RelayChannels = defaultRelayChannels
	}
	if profile.RelayChannels < 0 {
		return nil, fmt.Errorf("profile %s: relay_channels must be positive", path)
	}

	return profile, nil
}
