// Package cli implements the novaforge command-line interface. Commands open
// the engine's database directly; timed completions are applied by the daemon
// (or, for overdue jobs, by the next process that sweeps).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	ownerID    int
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "novaforge",
		Short: "NovaForge CLI - production and extraction scheduling",
		Long: `NovaForge CLI drives the production and extraction scheduling engine.

Examples:
  novaforge job start-production --owner-id 1 --facility FORGE-1 --recipe PLASMA_RIFLE --quantity 2 --quality HIGH
  novaforge job start-extraction --owner-id 1 --site ASTEROID-7 --resource IRON_ORE
  novaforge job list --owner-id 1 --status ACTIVE
  novaforge job cancel <job-id>
  novaforge sample list --owner-id 1
  novaforge sample appraise <sample-id> --owner-id 1
  novaforge sample sell <sample-id> --owner-id 1
  novaforge ledger balances --owner-id 1
  novaforge catalog recipes`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (defaults to ./config.yaml search)")
	rootCmd.PersistentFlags().IntVar(&ownerID, "owner-id", 0,
		"Owner ID the operation acts for")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewJobCommand())
	rootCmd.AddCommand(NewSampleCommand())
	rootCmd.AddCommand(NewLedgerCommand())
	rootCmd.AddCommand(NewCatalogCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
