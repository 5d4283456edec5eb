package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/coalition-intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// migrator runs schema migrations. The postgres package functions satisfy
// it; tests substitute their own.
type migrator struct {
	up       func(dbURL, path string) error
	down     func(dbURL, path string, steps int) error
	status   func(dbURL, path string) (uint, bool, error)
	force    func(dbURL, path string, version int) error
	resolver func(cliCtx *CLIContext) (dbURL, path string)
}

func defaultMigrator() *migrator {
	return &migrator{
		up:     postgres.RunMigrations,
		down:   postgres.RollbackMigration,
		status: postgres.MigrationStatus,
		force:  postgres.ForceMigrationVersion,
		resolver: func(cliCtx *CLIContext) (string, string) {
			db := cliCtx.Config.Database
			return postgres.BuildDSN(postgresConfig(db)), db.MigrationPath
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return newMigrateCmdWith(defaultMigrator())
}

func newMigrateCmdWith(m *migrator) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL dataset schema",
		Long: "Apply, roll back or inspect the schema used by dataset.source=postgres.\n" +
			"The schema ships with the binary; set database.migration_path to a source\n" +
			"URL such as file://migrations to use another one.",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cliCtx, dbURL, path, err := m.target(cmd)
				if err != nil {
					return err
				}
				if err := m.up(dbURL, path); err != nil {
					return err
				}
				return m.report(cmd, cliCtx, dbURL, path, "migrations applied")
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back the last N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return errors.InvalidParam(fmt.Sprintf("invalid step count %q", args[0]))
					}
					steps = n
				}
				cliCtx, dbURL, path, err := m.target(cmd)
				if err != nil {
					return err
				}
				if err := m.down(dbURL, path, steps); err != nil {
					return err
				}
				return m.report(cmd, cliCtx, dbURL, path, fmt.Sprintf("rolled back %d migration(s)", steps))
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, dbURL, path, err := m.target(cmd)
				if err != nil {
					return err
				}
				version, dirty, err := m.status(dbURL, path)
				if err != nil {
					return err
				}
				return PrintResult(cmd, migrationStatus{Version: version, Dirty: dirty})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark VERSION as applied without running it, clearing a dirty state",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.InvalidParam(fmt.Sprintf("invalid version %q", args[0]))
				}
				cliCtx, dbURL, path, err := m.target(cmd)
				if err != nil {
					return err
				}
				if err := m.force(dbURL, path, version); err != nil {
					return err
				}
				return m.report(cmd, cliCtx, dbURL, path, fmt.Sprintf("forced version %d", version))
			},
		},
	)

	return cmd
}

func (m *migrator) target(cmd *cobra.Command) (*CLIContext, string, string, error) {
	cliCtx, err := requireConfig(cmd)
	if err != nil {
		return nil, "", "", err
	}
	dbURL, path := m.resolver(cliCtx)
	return cliCtx, dbURL, path, nil
}

// report logs the new schema version after a change and prints msg.
func (m *migrator) report(cmd *cobra.Command, cliCtx *CLIContext, dbURL, path, msg string) error {
	version, dirty, err := m.status(dbURL, path)
	if err != nil {
		return err
	}
	cliCtx.Logger.Info(msg, logging.Int64("version", int64(version)), logging.Bool("dirty", dirty))
	PrintSuccess(cmd, fmt.Sprintf("%s, schema at version %d", msg, version))
	return nil
}

//Personal.AI order the ending
