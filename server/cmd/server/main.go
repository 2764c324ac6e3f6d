// Package main is the coffeetrack API server binary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.Version=...".
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "coffeetrack"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags shared by every command that needs a configuration.
type flags struct {
	configPath string
	envFile    string
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Coffee plant growth tracker API",
		Long: `coffeetrack records coffee plant profiles, growth observations and
sensor readings in a document store and serves them, together with
per-plant statistics, over an HTTP/JSON API.

Running without a subcommand is the same as "coffeetrack serve".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), f)
		},
	}

	cmd.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "Config file path (YAML); defaults apply when empty")
	cmd.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before the config; ignored when missing")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), f)
			},
		},
		&cobra.Command{
			Use:   "ping",
			Short: "Connect to the configured store and list its collections",
			RunE: func(cmd *cobra.Command, args []string) error {
				return ping(cmd.Context(), cmd.OutOrStdout(), f)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}
