// Command finhawk runs the FinHawk dashboard BFF and its reporting CLI.
package main

import (
	"fmt"
	"os"

	// Embedded zoneinfo so TIMEZONE resolves on minimal images.
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

var (
	configFile string
	envFile    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "finhawk",
		Short:         "FinHawk dashboard backend-for-frontend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"Optional config file (yaml, json or toml); environment variables take precedence")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"Path to a .env file loaded before reading the environment")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newReportCmd())
	return cmd
}
