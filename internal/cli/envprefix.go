package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/layercfg/layercfg"
)

func newEnvPrefixCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env-prefix <slug>",
		Short: "Print the canonical environment variable prefix for a slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), layercfg.DefaultEnvPrefix(args[0]))
			return nil
		},
	}
}
