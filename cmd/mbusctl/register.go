package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var readRegisterCmd = &cobra.Command{
	Use:   "read-register <address> [count]",
	Short: "Read holding registers",
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

		values, err := client.ReadRegisters(addr, count)
		if err != nil {
			return err
		}

		for i, v := range values {
			fmt.Printf("%d: %d (0x%04X)\n", addr+uint16(i), v, v)
		}

		return nil
	},
}

var writeRegisterCmd = &cobra.Command{
	Use:   "write-register <address> <value>...",
	Short: "Write holding registers",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseUint16(args[0], "address")
		if err != nil {
			return err
		}

		values := make([]uint16, 0, len(args)-1)
		for _, arg := range args[1:] {
			v, err := parseUint16(arg, "value")
			if err != nil {
				return err
			}
			values = append(values, v)
		}

		client, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		if len(values) == 1 {
			return client.WriteRegister(addr, values[0])
		}

		return client.WriteRegisters(addr, values)
	},
}

func parseUint16(arg string, name string) (uint16, error) {
	v, err := strconv.ParseUint(arg, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, arg, err)
	}

	return uint16(v), nil
}
