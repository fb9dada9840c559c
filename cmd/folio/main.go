// Command folio is the portfolio CMS: it serves the JSON API and intro page
// and carries the operator tools (migrations, seeding, stats, reordering,
// archive browsing, TOTP enrolment).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - portfolio CMS server and tools",
	Long: `folio serves a portfolio site: an admin area for categories and projects,
a public archive with search, and threaded comments under each project.

Configuration is read from the environment (APP_*, POSTGRES_*, VALKEY_*,
SESSION_*, ADMIN_*, S3_*).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, statsCmd, reorderCmd, browseCmd, totpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
