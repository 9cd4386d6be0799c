package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uptrace/bun"

	"github.com/roivaz/repometa/internal/config"
	"github.com/roivaz/repometa/internal/db"
	dbmigrate "github.com/roivaz/repometa/internal/db/migrate"
)

const pingTimeout = 5 * time.Second

// scopeTables lists the tables each recreate scope drops.
var scopeTables = map[string][]string{
	"repositories": {"repositories"},
}

var rootCmd = &cobra.Command{
	Use:          "dbctl",
	Short:        "Repository mirror schema management CLI",
	SilenceUsage: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize migration tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			return manager.Init(cmd.Context())
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or rollback schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			if err := manager.Init(cmd.Context()); err != nil {
				return err
			}
			applied, err := manager.MigrateUp(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		to, _ := cmd.Flags().GetString("to")

		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			if to != "" {
				return manager.MigrateDownTo(cmd.Context(), to)
			}
			return manager.MigrateDownSteps(cmd.Context(), steps)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			status, err := manager.Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range status {
				state := "pending"
				if m.IsApplied() {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s_%s\t%s\n", m.Name, m.Comment, state)
			}
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Ensure database is on the latest schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			return dbmigrate.EnsureCurrent(cmd.Context(), database.Bun(), config.MigrationsDir(), false)
		})
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the database accepts connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
			defer cancel()
			if err := database.Ping(ctx); err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database connection successful")
			return nil
		})
	},
}

var recreateCmd = &cobra.Command{
	Use:   "recreate <scope>",
	Short: "Drop and recreate tables for a scope (destructive)",
	Args:  validateScope,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !destructiveAllowed() {
			return errors.New("DB_ALLOW_DESTRUCTIVE=yes must be set for recreate")
		}
		scope := args[0]
		return runWithDatabase(func(database *db.Database) error {
			return recreateScope(cmd.Context(), database.Bun(), scope)
		})
	},
}

func main() {
	rootCmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (overrides POSTGRES_URL)")
	rootCmd.PersistentFlags().String("migrations", "", "Migrations directory (default: embedded)")
	_ = viper.BindPFlag(config.KeyPostgresURL, rootCmd.PersistentFlags().Lookup("dsn"))
	_ = viper.BindPFlag(config.KeyMigrationsDir, rootCmd.PersistentFlags().Lookup("migrations"))
	_ = migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to roll back (0 = all)")
	_ = migrateDownCmd.Flags().String("to", "", "Roll back to the specified migration (inclusive)")

	config.Init(rootCmd)

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(initCmd, migrateCmd, statusCmd, verifyCmd, pingCmd, recreateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dbctl: %v\n", err)
		os.Exit(1)
	}
}

func runWithDatabase(fn func(*db.Database) error) error {
	database, err := db.NewDatabase(db.Config{DSN: config.PostgresURL(), Debug: config.DBDebug()})
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(database)
}

func validateScope(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("scope must be exactly one of: %s", scopeNames())
	}
	if _, ok := scopeTables[args[0]]; !ok {
		return fmt.Errorf("scope must be one of: %s", scopeNames())
	}
	return nil
}

func scopeNames() string {
	names := make([]string, 0, len(scopeTables))
	for name := range scopeTables {
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

func destructiveAllowed() bool {
	return strings.ToLower(os.Getenv("DB_ALLOW_DESTRUCTIVE")) == "yes"
}

func recreateScope(ctx context.Context, bunDB *bun.DB, scope string) error {
	tables, ok := scopeTables[scope]
	if !ok {
		return fmt.Errorf("unknown scope: %s", scope)
	}
	if _, err := bunDB.NewDropTable().Table(tables...).IfExists().Cascade().Exec(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", scope, err)
	}
	manager, err := dbmigrate.NewManager(bunDB, config.MigrationsDir())
	if err != nil {
		return err
	}
	// The tables are gone, so forget the applied versions before re-running them.
	if err := manager.Reset(ctx); err != nil {
		return fmt.Errorf("reset migrations: %w", err)
	}
	return dbmigrate.EnsureCurrent(ctx, bunDB, config.MigrationsDir(), true)
}

func newManager(database *db.Database) (*dbmigrate.Manager, error) {
	return dbmigrate.NewManager(database.Bun(), config.MigrationsDir())
}
