package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/swagger-cli/internal/catalog"
	"github.com/spf13/cobra"
)

var listRunner = runList

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API clients stored in .yo-rc.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return listRunner(cmd.Context(), cfg)
		},
	}
}

func runList(_ context.Context, cfg *GenerateConfig) error {
	_, _, cat, err := loadProject(cfg)
	if err != nil {
		return err
	}
	if len(cat) == 0 {
		fmt.Fprintln(os.Stdout, "No API clients stored")
		return nil
	}
	for _, name := range cat.Names() {
		fmt.Fprintln(os.Stdout, catalog.Label(name, cat[name]))
	}
	return nil
}
