package cli

import (
	"github.com/spf13/cobra"

	"github.com/layercfg/layercfg/internal/scaffold"
)

func newGenerateCommand() *cobra.Command {
	var (
		destination string
		slug        string
		vendor      string
		app         string
		platform    string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "generate-examples",
		Short: "Generate canonical example configuration files",
		Long: `Write an annotated example tree demonstrating the layered layout:
application defaults, a host override stub, user preferences with a config.d
drop-in, and a .env template. Prints the created paths as a JSON array.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := scaffold.GenerateExamples(destination, scaffold.ExampleSpec{
				Slug:     slug,
				Vendor:   vendor,
				App:      app,
				Platform: platform,
				Force:    force,
			})
			if err != nil {
				return err
			}
			return printPathList(cmd, written)
		},
	}

	cmd.Flags().StringVar(&destination, "destination", "", "directory that will receive the example tree")
	cmd.Flags().StringVar(&slug, "slug", "", "slug identifying the configuration set")
	cmd.Flags().StringVar(&vendor, "vendor", "", "vendor namespace used in examples")
	cmd.Flags().StringVar(&app, "app", "", "application name used in examples")
	cmd.Flags().StringVar(&platform, "platform", "", "override platform layout (posix or windows)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing example files")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("app")

	return cmd
}
