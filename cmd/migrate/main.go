package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mkrhub/controlhub/internal/config"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/postgres"
	"github.com/spf13/cobra"
)

var timeout time.Duration

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the MKR Control Hub database schema",
	Long: `migrate applies the SQL schema embedded in the server binary to the
configured Postgres database. Applied versions are recorded in the
schema_migrations table, so running it twice is safe.`,
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log, err := logger.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		log.Infow("Connecting to database", "host", cfg.Postgres.Host)
		db, err := postgres.NewDB(cfg, log)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		log.Info("Running database migrations...")
		applied, err := db.Migrate(ctx)
		if err != nil {
			log.Errorw("migration failed", "applied", applied, "error", err)
			return err
		}

		if len(applied) == 0 {
			log.Info("Schema is up to date")
			return nil
		}
		log.Infow("Migration completed successfully", "applied", applied)
		return nil
	},
}

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the migration SQL without executing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrations, err := postgres.Migrations()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range migrations {
			fmt.Fprintf(out, "-- %s\n%s\n", m.Version, m.SQL)
		}
		return nil
	},
}

func init() {
	upCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Maximum time the migration may take")
	rootCmd.AddCommand(upCmd, printCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
