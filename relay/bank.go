// Package relay provides a named-channel device model for relay banks
// controlled through coils, layered on top of the mbtcp client session.
//
// Each relay channel maps to one coil address starting at 0. The reserved
// broadcast address is understood by the device, not by the client, to mean
// "all relays at once".
package relay

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-modbus/mbtcp"
	"github.com/arloliu/go-modbus/modbus"
)

// DefaultChannels is the channel count of the common 8-relay banks.
const DefaultChannels = 8

// BroadcastAddress is the reserved coil address the device interprets as
// "write all relay channels".
const BroadcastAddress uint16 = 0x00FF

// Bank controls one bank of relay channels through a client session.
type Bank struct {
	client   *mbtcp.Client
	channels int
}

// NewBank creates a relay bank with the given channel count on client.
// Pass DefaultChannels for the common 8-relay hardware.
func NewBank(client *mbtcp.Client, channels int) (*Bank, error) {
	if client == nil {
		return nil, errors.New("relay: client is nil")
	}
	if channels < 1 || channels > int(BroadcastAddress) {
		return nil, fmt.Errorf("relay: channel count %d out of range [1, %d]", channels, BroadcastAddress)
	}

	return &Bank{
		client:   client,
		channels: channels,
	}, nil
}

// Channels returns the number of relay channels in the bank.
func (b *Bank) Channels() int { return b.channels }

// Set switches one relay channel on or off.
func (b *Bank) Set(channel int, on bool) error {
	if err := b.checkChannel(channel); err != nil {
		return err
	}

	return b.client.WriteCoil(uint16(channel), on)
}

// On switches one relay channel on.
func (b *Bank) On(channel int) error { return b.Set(channel, true) }

// Off switches one relay channel off.
func (b *Bank) Off(channel int) error { return b.Set(channel, false) }

// AllOn switches every relay channel on via the broadcast address.
func (b *Bank) AllOn() error {
	return b.client.WriteCoil(BroadcastAddress, true)
}

// AllOff switches every relay channel off via the broadcast address.
func (b *Bank) AllOff() error {
	return b.client.WriteCoil(BroadcastAddress, false)
}

// State reads the current state of one relay channel.
func (b *Bank) State(channel int) (bool, error) {
	if err := b.checkChannel(channel); err != nil {
		return false, err
	}

	return b.client.ReadCoil(uint16(channel))
}

// States reads the current state of every relay channel in the bank.
func (b *Bank) States() ([]bool, error) {
	packed, err := b.client.ReadCoils(0, uint16(b.channels))
	if err != nil {
		return nil, err
	}

	return modbus.UnpackBits(packed, b.channels), nil
}

func (b *Bank) checkChannel(channel int) error {
	if channel < 0 || channel >= b.channels {
		return fmt.Errorf("relay: channel %d out of range [0, %d]", channel, b.channels-1)
	}

	return nil
}
