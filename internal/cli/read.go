package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/layercfg/layercfg"
)

// readFlags are shared by `read` and `inspect`, which load the same stack.
type readFlags struct {
	vendor   string
	app      string
	slug     string
	prefer   []string
	startDir string
}

func (f *readFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.vendor, "vendor", "", "vendor namespace (e.g. organisation name)")
	cmd.Flags().StringVar(&f.app, "app", "", "application name used for host/user directories")
	cmd.Flags().StringVar(&f.slug, "slug", "", "slug identifying the configuration set")
	cmd.Flags().StringArrayVar(&f.prefer, "prefer", nil, "preferred file suffix ordering for config.d entries (repeatable)")
	cmd.Flags().StringVar(&f.startDir, "start-dir", "", "starting directory for .env upward search (defaults to CWD)")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.MarkFlagRequired("slug")
}

func (f *readFlags) options() layercfg.Options {
	return layercfg.Options{
		Vendor:   f.vendor,
		App:      f.app,
		Slug:     f.slug,
		Prefer:   f.prefer,
		StartDir: f.startDir,
	}
}

func newReadCommand() *cobra.Command {
	var (
		flags      readFlags
		indent     int
		provenance bool
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Load layered configuration and print it as JSON",
		Long: `Load every configuration layer in precedence order and print the merged
result as JSON. With --provenance the output also maps each dotted key to the
layer and file that last set it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, meta, err := layercfg.ReadConfigRaw(flags.options())
			if err != nil {
				return err
			}
			output, err := renderRead(data, meta, indent, provenance)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&indent, "indent", 0, "pretty-print JSON output with the provided indent size")
	cmd.Flags().BoolVar(&provenance, "provenance", false, "include provenance metadata for each key")

	return cmd
}

func renderRead(data map[string]any, meta map[string]layercfg.SourceInfo, indent int, provenance bool) (string, error) {
	var document any = data
	if provenance {
		document = map[string]any{
			"config":     data,
			"provenance": meta,
		}
	}
	var (
		raw []byte
		err error
	)
	if indent > 0 {
		raw, err = json.MarshalIndent(document, "", strings.Repeat(" ", indent))
	} else {
		raw, err = json.Marshal(document)
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
