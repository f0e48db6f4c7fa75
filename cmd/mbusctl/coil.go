package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-modbus/modbus"
)

var readCoilCmd = &cobra.Command{
	Use:   "read-coil <address> [count]",
	Short: "Read coil states",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseUint16(args[0], "address")
		if err != nil {
			return err
		}

		count := uint16(1)
		if len(args) == 2 {
			count, err = parseUint16(args[1], "count")
			if err != nil {
				return err
			}
		}

		client, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		packed, err := client.ReadCoils(addr, count)
		if err != nil {
			return err
		}

		for i, on := range modbus.UnpackBits(packed, int(count)) {
			fmt.Printf("%d: %s\n", addr+uint16(i), onOff(on))
		}

		return nil
	},
}

var writeCoilCmd = &cobra.Command{
	Use:   "write-coil <address> on|off",
	Short: "Write a single coil",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseUint16(args[0], "address")
		if err != nil {
			return err
		}

		on, err := parseOnOff(args[1])
		if err != nil {
			return err
		}

		client, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		return client.WriteCoil(addr, on)
	},
}

func parseOnOff(arg string) (bool, error) {
	switch arg {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state %q: want on or off", arg)
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}

	return "off"
}
