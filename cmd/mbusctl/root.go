package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-modbus/logger"
	"github.com/arloliu/go-modbus/mbtcp"
)

var (
	flagHost    string
	flagPort    int
	flagUnit    uint8
	flagTimeout time.Duration
	flagProfile string
	flagVerbose bool

	rootCmd = &cobra.Command{
		Use:          "mbusctl",
		Short:        "mbusctl - Modbus TCP register and coil access",
		Long:         "mbusctl reads and writes holding registers and coils on Modbus TCP devices such as relay banks.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "device address (required unless --profile is given)")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", mbtcp.DefaultPort, "device TCP port")
	rootCmd.PersistentFlags().Uint8Var(&flagUnit, "unit", mbtcp.DefaultUnitID, "unit (slave) ID")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", mbtcp.DefaultResponseTimeout, "response timeout")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "device profile YAML file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(readRegisterCmd)
	rootCmd.AddCommand(writeRegisterCmd)
	rootCmd.AddCommand(readCoilCmd)
	rootCmd.AddCommand(writeCoilCmd)
	rootCmd.AddCommand(relayCmd)
}

// resolveProfile merges the --profile file (when given) with command-line
// flags; explicit flags win.
func resolveProfile(cmd *cobra.Command) (*Profile, error) {
	profile := &Profile{
		Port:            mbtcp.DefaultPort,
		UnitID:          mbtcp.DefaultUnitID,
		ResponseTimeout: mbtcp.DefaultResponseTimeout,
		RelayChannels:   defaultRelayChannels,
	}

	if flagProfile != "" {
		loaded, err := LoadProfile(flagProfile)
		if err != nil {
			return nil, err
		}
		profile = loaded
	}

	if cmd.Flags().Changed("host") || profile.Host == "" {
		profile.Host = flagHost
	}
	if cmd.Flags().Changed("port") {
		profile.Port = flagPort
	}
	if cmd.Flags().Changed("unit") {
		profile.UnitID = flagUnit
	}
	if cmd.Flags().Changed("timeout") {
		profile.ResponseTimeout = flagTimeout
	}

	if profile.Host == "" {
		return nil, fmt.Errorf("no device address: pass --host or --profile")
	}

	return profile, nil
}

// openClient connects a client session for the resolved device profile.
// The caller must Close the returned client.
func openClient(cmd *cobra.Command) (*mbtcp.Client, error) {
	profile, err := resolveProfile(cmd)
	if err != nil {
		return nil, err
	}

	if flagVerbose {
		logger.SetLevel(logger.DebugLevel)
	}

	cfg, err := mbtcp.NewClientConfig(profile.Host, profile.Port,
		mbtcp.WithUnitID(profile.UnitID),
		mbtcp.WithResponseTimeout(profile.ResponseTimeout),
	)
	if err != nil {
		return nil, err
	}

	client, err := mbtcp.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if err := client.Connect(); err != nil {
		return nil, err
	}

	return client, nil
}
