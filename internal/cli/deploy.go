package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/layercfg/layercfg/internal/scaffold"
)

func newDeployCommand() *cobra.Command {
	var (
		source   string
		vendor   string
		app      string
		slug     string
		targets  []string
		platform string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Copy a configuration file into layered directories",
		Long: `Copy a configuration artifact into the canonical location of each
requested layer (app, host, user). Existing files are preserved unless
--force is set. Prints the created paths as a JSON array.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := scaffold.Deploy(source, scaffold.DeployOptions{
				Vendor:   vendor,
				App:      app,
				Slug:     slug,
				Targets:  targets,
				Platform: platform,
				Force:    force,
			})
			if err != nil {
				return err
			}
			return printPathList(cmd, written)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "path to the configuration file that should be copied")
	cmd.Flags().StringVar(&vendor, "vendor", "", "vendor namespace (e.g. organisation name)")
	cmd.Flags().StringVar(&app, "app", "", "application name used for host/user directories")
	cmd.Flags().StringVar(&slug, "slug", "", "slug identifying the configuration set")
	cmd.Flags().StringArrayVar(&targets, "target", nil, "layer targets to deploy to: app, host, user (repeatable)")
	cmd.Flags().StringVar(&platform, "platform", "", "override auto-detected platform (linux, darwin, windows)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files at the destination")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func printPathList(cmd *cobra.Command, written []string) error {
	if written == nil {
		written = []string{}
	}
	raw, err := json.Marshal(written)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return nil
}
