package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "deckcraft [topic]",
	Short: "Generate presentation decks from a topic",
	Long: `Deckcraft turns a topic into a complete PowerPoint deck: a title slide,
templated content slides with pictures and speaker notes, and a conclusion.
Running without a subcommand is the same as "deckcraft generate".`,
	Args:         cobra.ArbitraryArgs,
	RunE:         runGenerate,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogger()
	}
	addGenerateFlags(rootCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
