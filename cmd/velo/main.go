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
		Use:   "velo",
		Short: "Universal SSR routing and rendering core",
		Long: `Velo serves one declarative route tree three ways at once:

  • as a single-page application shell
  • as server-rendered HTML
  • as server-rendered Markdown for text and LLM clients

Routes compose through nested layouts with slot splicing, embedded
widgets resolve server-side with hydration data, and failures recover
through status pages and scoped error boundaries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
