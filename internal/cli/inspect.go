package cli

import (
	"github.com/spf13/cobra"

	"github.com/layercfg/layercfg"
	"github.com/layercfg/layercfg/internal/tui"
)

func newInspectCommand() *cobra.Command {
	var flags readFlags

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Interactively browse merged configuration and provenance",
		Long: `Open an interactive browser over the merged configuration. Each key shows
its resolved value and a color-coded badge for the layer that set it; the
detail line names the exact file. Type / to filter keys.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := layercfg.ReadConfig(flags.options())
			if err != nil {
				return err
			}
			return tui.Run(cfg)
		},
	}

	flags.register(cmd)
	return cmd
}
