package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/voicefx/engine"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			for _, p := range engine.Presets() {
				kinds := ""
				for i, params := range p.Build(48000) {
					if i > 0 {
						kinds += " > "
					}

					kinds += params.Kind().String()
				}

				fmt.Fprintf(tw, "%s\t%s\t[%s]\n", p.Name, p.Description, kinds)
			}

			return tw.Flush()
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	flags := &engineFlags{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.settings(cmd, flags)
			if err != nil {
				return err
			}

			return s.Encode(cmd.OutOrStdout())
		},
	}

	addEngineFlags(cmd, flags)

	return cmd
}
