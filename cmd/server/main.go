// Package main implements the picturebook command: the HTTP server that
// turns Chinese stories into pinyin picture books with a quiz, plus
// one-shot generation and database migration commands.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "picturebook",
	Short: "Chinese story to pinyin picture book service",
	Long: `Picturebook turns a short Chinese story into an illustrated picture book
annotated with pinyin, followed by a three-question reading quiz.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
