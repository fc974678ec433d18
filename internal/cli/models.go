package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"synthctl/internal/models"
)

func newModelsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage pretrained model artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("models requires a subcommand: fetch|list")
		},
	}
	fetch := &cobra.Command{
		Use:     "fetch",
		Short:   "Clone or update the configured model repositories",
		Example: "  synthctl models fetch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return models.Fetch(cmd.Context(), a.cfg.Models, a.cfg.ModelsDir, a.log)
		},
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "Print the configured model repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Models) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no model repositories configured")
				return nil
			}
			for _, m := range a.cfg.Models {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", m.Name, m.URL)
			}
			return nil
		},
	}
	cmd.AddCommand(fetch, list)
	return cmd
}
