package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "demoimport",
		Short:         "demoimport brings a site in line with an imported demo content package",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "demoimport.yaml", "Path to the configuration file")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newImportCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
