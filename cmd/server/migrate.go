package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/pinyin-picturebook/internal/config"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// errNoDatabase is returned by migrate when no database URL is configured.
var errNoDatabase = errors.New("no database configured: set PICTUREBOOK_DATABASE_URL")

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status|version]",
	Short: "Run database migrations",
	Long: `Run the embedded goose migrations against the configured database.
"up" applies every pending migration, "down" rolls back the latest one.`,
	ValidArgs: []string{
		postgres.MigrateUp,
		postgres.MigrateDown,
		postgres.MigrateStatus,
		postgres.MigrateVersion,
	},
	Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.URL == "" {
		return errNoDatabase
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := postgres.Migrate(ctx, db, args[0], log); err != nil {
		return err
	}
	log.Info("migrations completed successfully", "command", args[0])
	return nil
}
