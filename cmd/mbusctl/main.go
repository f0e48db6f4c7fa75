// mbusctl is a command-line tool for reading and writing registers and coils
// on Modbus TCP devices, layered on top of the go-modbus client session.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
