package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/molscreen/internal/infrastructure/database/postgres"
)

// NewMigrateCmd creates the migrate command group.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the record store schema",
	}
	cmd.AddCommand(newMigrateUpCmd(), newMigrateStatusCmd(), newMigrateRollbackCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			db := cliCtx.Config.Database
			if err := postgres.RunMigrations(db.DSN(), db.MigrationPath); err != nil {
				return err
			}
			return PrintResult(cmd, "migrations applied")
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			db := cliCtx.Config.Database
			version, dirty, err := postgres.MigrationStatus(db.DSN(), db.MigrationPath)
			if err != nil {
				return err
			}
			return PrintResult(cmd, fmt.Sprintf("version=%d dirty=%v", version, dirty))
		},
	}
}

func newMigrateRollbackCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Roll the schema back by N steps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			db := cliCtx.Config.Database
			if err := postgres.RollbackMigration(db.DSN(), db.MigrationPath, steps); err != nil {
				return err
			}
			return PrintResult(cmd, fmt.Sprintf("rolled back %d step(s)", steps))
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}
