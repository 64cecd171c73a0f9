package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/pinyin-picturebook/internal/config"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/gemini"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
	"github.com/phrazzld/pinyin-picturebook/internal/redact"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one picture book and print it as JSON",
	Long: `Generate a picture book from the story in --file ("-" reads stdin) and
write it to stdout as JSON. With --illustrate every page is illustrated too;
a page whose illustration fails is left without an image.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("file", "f", "", "story text file, or - for stdin")
	generateCmd.Flags().Bool("illustrate", false, "also generate an illustration for every page")
	_ = generateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	illustrate, _ := cmd.Flags().GetBool("illustrate")

	text, err := readStory(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// stdout carries the book; logs go to stderr.
	log := logger.New(cmd.ErrOrStderr(), cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	models, err := gemini.NewModels(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	opts := gemini.Options{Logger: log, Policy: gemini.PolicyFromConfig(cfg.LLM)}

	var illustrator generation.Illustrator
	if illustrate {
		illustrator = gemini.NewIllustrator(models, cfg.LLM.ImageModel, opts)
	}
	book, err := generateBook(ctx, text,
		gemini.NewStoryGenerator(models, cfg.LLM.TextModel, opts), illustrator, log)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(book)
}

func readStory(stdin io.Reader, path string) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read story: %w", err)
	}
	return string(raw), nil
}

// generateBook runs the story pipeline once. When illustrator is non-nil
// every page is illustrated in order; failed pages are logged and skipped.
func generateBook(
	ctx context.Context,
	text string,
	stories generation.StoryGenerator,
	illustrator generation.Illustrator,
	log *slog.Logger,
) (*domain.Book, error) {
	story, err := stories.GenerateStory(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("story generation failed: %w", err)
	}

	book, err := domain.NewBook(text, *story)
	if err != nil {
		return nil, err
	}
	log.Info("story generated", "title", story.Title, "pages", len(story.Pages))

	if illustrator == nil {
		return book, nil
	}
	for i, page := range story.Pages {
		img, err := illustrator.Illustrate(ctx, page.ImagePrompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error("illustration failed", "page", i, "error", redact.Error(err))
			continue
		}
		book.Images[i] = img
	}
	return book, nil
}
