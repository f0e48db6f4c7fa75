package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-modbus/mbtcp"
	"github.com/arloliu/go-modbus/relay"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Control relay bank channels",
}

func init() {
	relayCmd.AddCommand(
		&cobra.Command{
			Use:   "on <channel>",
			Short: "Switch one relay channel on",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return relaySet(cmd, args[0], true)
			},
		},
		&cobra.Command{
			Use:   "off <channel>",
			Short: "Switch one relay channel off",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return relaySet(cmd, args[0], false)
			},
		},
		&cobra.Command{
			Use:   "all-on",
			Short: "Switch every relay channel on",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				bank, client, err := openBank(cmd)
				if err != nil {
					return err
				}
				defer client.Close()

				return bank.AllOn()
			},
		},
		&cobra.Command{
			Use:   "all-off",
			Short: "Switch every relay channel off",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				bank, client, err := openBank(cmd)
				if err != nil {
					return err
				}
				defer client.Close()

				return bank.AllOff()
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the state of every relay channel",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				bank, client, err := openBank(cmd)
				if err != nil {
					return err
				}
				defer client.Close()

				states, err := bank.States()
				if err != nil {
					return err
				}

				for ch, on := range states {
					fmt.Printf("channel %d: %s\n", ch, onOff(on))
				}

				return nil
			},
		},
	)
}

func relaySet(cmd *cobra.Command, arg string, on bool) error {
	channel, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid channel %q: %w", arg, err)
	}

	bank, client, err := openBank(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	return bank.Set(channel, on)
}

func openBank(cmd *cobra.Command) (*relay.Bank, *mbtcp.Client, error) {
	profile, err := resolveProfile(cmd)
	if err != nil {
		return nil, nil, err
	}

	client, err := openClient(cmd)
	if err != nil {
		return nil, nil, err
	}

	bank, err := relay.NewBank(client, profile.RelayChannels)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	return bank, client, nil
}
