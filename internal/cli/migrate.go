package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tenantadmin/internal/db"
	"tenantadmin/internal/repositories"
)

func newMigrateCommand() *cobra.Command {
	var version int64
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and store indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := db.Migrate(cmd.Context(), a.db, version); err != nil {
				return err
			}
			if a.mongo != nil {
				if err := repositories.EnsureMongoIndexes(cmd.Context(), a.mongo.Database(a.env.MongoDatabase)); err != nil {
					return err
				}
			}
			a.logger.Info("migrations applied", zap.Int64("version", version))
			return nil
		},
	}
	cmd.Flags().Int64Var(&version, "to", 0, "target schema version (0 = latest)")
	return cmd
}
