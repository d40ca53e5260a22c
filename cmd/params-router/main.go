package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "params-router",
		Short: "Bidirectional URL to parameters conversion",
		Long: `params-router converts between URLs and structured parameter
mappings, and composes the conversions across nested routing scopes.

  • match:  extract parameters from a URL against a pattern
  • build:  build a URL from a pattern and parameters
  • serve:  run a demo server exposing the engine over HTTP and WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		matchCmd(),
		buildCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
