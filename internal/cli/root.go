package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the tenantadmin command tree. Running it without a subcommand serves the API.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tenantadmin",
		Short:         "Multi-tenant administration API",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.AddCommand(newServeCommand(), newMigrateCommand(), newSeedCommand())
	return cmd
}
