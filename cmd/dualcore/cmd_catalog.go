package main

import (
	"github.com/spf13/cobra"

	"dualcore/internal/catalog"
)

func newCatalogCmd(_ *rootState) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the thinking modes, mindsets and sample scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := validateOutput(output, outputJSON, outputYAML)
			if err != nil {
				return err
			}
			return writeStructured(cmd.OutOrStdout(), format, catalog.All())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "output format: json|yaml")
	return cmd
}
