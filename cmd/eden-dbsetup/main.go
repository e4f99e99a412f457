package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "eden-dbsetup",
		Short: "Prepare a database backend for an Eden test run",
		Long:  "eden-dbsetup creates the test database, enables optional PostGIS support, and activates the matching settings in models/000_config.py.",
	}

	rootCmd.AddCommand(newSetupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
