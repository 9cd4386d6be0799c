package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"

	"github.com/roivaz/repometa/internal/config"
	"github.com/roivaz/repometa/internal/db"
	dbmigrate "github.com/roivaz/repometa/internal/db/migrate"
	"github.com/roivaz/repometa/internal/extract"
	"github.com/roivaz/repometa/internal/logging"
	"github.com/roivaz/repometa/internal/repometa"
)

var rootCmd = &cobra.Command{
	Use:          "repometa",
	Short:        "Export popular repositories from the metadata dump to CSV",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := extract.NewExtractor(extract.DefaultConfig(), cmd.OutOrStdout(), newLogger()).Run()
		return err
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the source to CSV column mapping",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeSchema(cmd.OutOrStdout())
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Upsert popular repositories into PostgreSQL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.NewDatabase(db.Config{DSN: config.PostgresURL(), Debug: config.DBDebug()})
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)
		go func() {
			select {
			case <-sigs:
				cancel()
			case <-ctx.Done():
			}
		}()

		if err := dbmigrate.EnsureCurrent(ctx, database.Bun(), config.MigrationsDir(), config.AutoMigrate()); err != nil {
			return err
		}

		log := newLogger()
		store := db.NewRepositoryStore(database, db.WithBatchSize(config.LoadBatchSize()))
		ex := extract.NewExtractor(extract.DefaultConfig(), cmd.OutOrStdout(), log)
		_, err = extract.NewLoader(ex, store, log).Load(ctx)
		return err
	},
}

func main() {
	loadCmd.Flags().String("dsn", "", "PostgreSQL DSN (overrides POSTGRES_URL)")
	loadCmd.Flags().Bool("auto-migrate", false, "Apply pending migrations before loading")
	_ = viper.BindPFlag(config.KeyPostgresURL, loadCmd.Flags().Lookup("dsn"))
	_ = viper.BindPFlag(config.KeyAutoMigrate, loadCmd.Flags().Lookup("auto-migrate"))

	config.Init(rootCmd)
	rootCmd.AddCommand(schemaCmd, loadCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "repometa: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() logging.Logger {
	return logging.New(logging.NewLogr(config.LogLevel()).WithName("repometa"))
}

type schema struct {
	MinStars int              `json:"minStars"`
	Columns  []repometa.Field `json:"columns"`
}

func writeSchema(w io.Writer) error {
	out, err := yaml.Marshal(schema{MinStars: repometa.DefaultStarThreshold, Columns: repometa.Fields})
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	_, err = w.Write(out)
	return err
}
