package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/siteforge/demoimport/internal/model"
)

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <request.json>",
		Short: "Run one import from a request file, without the HTTP layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var req model.ImportRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("parse request %s: %w", args[0], err)
			}

			a, err := buildApp(flags.configPath)
			if err != nil {
				return err
			}
			defer a.close()

			result := a.pipeline.Run(cmd.Context(), req)

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

			if !result.Success {
				return fmt.Errorf("import failed")
			}
			return nil
		},
	}
}
