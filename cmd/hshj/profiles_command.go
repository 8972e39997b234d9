package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jordanella.com/hshj-locator/internal/assets"
	"jordanella.com/hshj-locator/internal/config"
	"jordanella.com/hshj-locator/internal/logging"
)

func newProfilesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List OCR profiles and where their models resolve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := config.LoadProfiles(cfg.ProfilesPath)
			if err != nil {
				return err
			}
			resolver := assets.NewResolver(cfg.AssetOptions(), logging.Discard())

			var rows [][]string
			for _, p := range registry.List() {
				role := ""
				switch p.ID {
				case cfg.FastProfile:
					role = "fast"
				case cfg.AccurateProfile:
					role = "accurate"
				}
				model := "missing"
				if path, err := resolver.ResolveModelPath(p); err == nil {
					model = path
				}
				rows = append(rows, []string{p.ID, role, p.Language, p.ModelFile(), p.Fallback, model})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Role", "Language", "Model", "Fallback", "Resolved"},
				rows,
				nil,
			))
			return nil
		},
	}
}
