package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pinyin-picturebook/internal/config"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/gemini"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/postgres"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server. When a database URL is configured, pending
migrations are applied before the server starts and books are archived in
PostgreSQL; otherwise they are kept in memory.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"text_model", cfg.LLM.TextModel,
		"image_model", cfg.LLM.ImageModel)

	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	models, err := gemini.NewModels(ctx, cfg.LLM)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	if cfg.LLM.GeminiAPIKey == "" {
		log.Warn("no Gemini API key configured; generation requests will fail")
	}

	app, err := newApplication(cfg, log, db, models)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// setupDatabase connects to and migrates the archive database. It returns
// a nil *sql.DB when no database is configured.
func setupDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	if cfg.Database.URL == "" {
		return nil, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established")

	if err := postgres.Migrate(ctx, db, postgres.MigrateUp, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
