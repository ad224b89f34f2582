package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the swagger-cli CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swagger-cli",
		Short: "Generate API clients for JHipster applications from Swagger/OpenAPI specs",
		Long: "swagger-cli discovers API specs through a service registry and gateway, keeps a catalog " +
			"of API clients in .yo-rc.json, and generates AngularJS and Spring Cloud Feign clients.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetFlagErrorFunc(flagUsageError)

	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file path (YAML or JSON)")
	pf.BoolP("verbose", "v", false, "Enable verbose logging output")
	pf.StringP("project", "p", "", "JHipster project directory (default \".\")")
	pf.String("log-file", "", "Also write logs to this file (rotated)")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newDiscoverCmd(), newListCmd(), newInitCmd()} {
		// Convert Cobra flag errors (like unknown flags) into usage errors
		// that also show the command's help text.
		sub.SetFlagErrorFunc(flagUsageError)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagUsageError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
