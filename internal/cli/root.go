// Package cli wires the layercfg commands into a cobra tree. Commands stay
// thin: they parse flags, call the library, and render JSON, leaving all
// merge and discovery semantics to the core packages.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/layercfg/layercfg/internal/observe"
)

// NewRootCommand builds the layercfg command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "layercfg",
		Short: "Immutable layered configuration reader",
		Long: `layercfg merges configuration from packaged defaults, host overrides,
user profiles, a local .env file, and environment variables into a single
deterministic view, and can explain which layer supplied every value.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				observe.SetLogger(observe.NewConsoleLogger(cmd.ErrOrStderr()))
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log layer resolution to stderr")

	rootCmd.AddCommand(newReadCommand())
	rootCmd.AddCommand(newEnvPrefixCommand())
	rootCmd.AddCommand(newDeployCommand())
	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newInspectCommand())

	return rootCmd
}
