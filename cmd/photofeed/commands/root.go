// Package commands implements the photofeed command line.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the photofeed command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "photofeed",
		Short: "Public photo feed viewer",
		Long: `Searches the public photo feed by tag and shows the results on the
command line or through a Telegram bot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("feed-url", "", "feed endpoint (overrides FEED_URL)")
	root.PersistentFlags().String("lang", "", "feed language (overrides FEED_LANG)")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	root.PersistentFlags().String("log-format", "", "text or json (overrides LOG_FORMAT)")
	root.PersistentFlags().Bool("unsafe-http", false, "allow requests to private addresses")

	root.AddCommand(newSearchCmd(), newBotCmd())
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
