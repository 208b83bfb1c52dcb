package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"deckcraft/internal/app"
	"deckcraft/pkg/config"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	generateTopic    string
	generateUpload   bool
	generateOpen     bool
	generateNoPrompt bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate a presentation deck",
	Long: `Generate a presentation deck for a topic. The topic comes from --topic,
the positional arguments, or an interactive prompt.`,
	Args: cobra.ArbitraryArgs,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "Topic for the presentation")
	cmd.Flags().BoolVarP(&generateUpload, "upload", "u", false, "Upload the deck to Google Cloud Storage")
	cmd.Flags().BoolVarP(&generateOpen, "open", "o", false, "Open the deck when done")
	cmd.Flags().BoolVar(&generateNoPrompt, "no-prompt", false, "Never prompt for a topic")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic, err := resolveTopic(args)
	if err != nil {
		return err
	}
	if topic == "" {
		fmt.Println(warnStyle.Render("No topic provided. Exiting..."))
		return nil
	}

	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	svc, err := app.BuildService(ctx, cfg, app.BuildOptions{Upload: generateUpload})
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			slog.Warn("Failed to close clients", "error", err)
		}
	}()

	pipeline := app.NewPipeline(svc)

	var result *app.GenerateResult
	var genErr error
	generate := func() { result, genErr = pipeline.Generate(ctx, topic) }
	if verbose {
		generate()
	} else {
		_ = spinner.New().
			Title(fmt.Sprintf("Creating presentation about %q", topic)).
			Action(generate).
			Run()
	}

	if errors.Is(genErr, app.ErrEmptyTopic) {
		fmt.Println(warnStyle.Render("No topic provided. Exiting..."))
		return nil
	}
	if result != nil {
		printResult(result)
	}
	if genErr != nil {
		return genErr
	}

	if generateOpen {
		if err := browser.OpenFile(result.Path); err != nil {
			slog.Warn("Failed to open deck", "path", result.Path, "error", err)
		}
	}

	return nil
}

func resolveTopic(args []string) (string, error) {
	topic := strings.TrimSpace(generateTopic)
	if topic == "" {
		topic = strings.TrimSpace(strings.Join(args, " "))
	}
	if topic != "" || generateNoPrompt {
		return topic, nil
	}

	if err := huh.NewInput().
		Title("Enter the topic for your presentation").
		Placeholder("Quantum Computing").
		Value(&topic).
		Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(topic), nil
}

func printResult(result *app.GenerateResult) {
	fmt.Println(successStyle.Render("✓ Presentation saved: " + result.Path))
	fmt.Println(mutedStyle.Render(fmt.Sprintf("  %d slides, %d pictures", result.Slides, result.Images)))
	if result.Placeholder > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  %d pictures are placeholders", result.Placeholder)))
	}
	if result.Missing > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  %d slides have no picture", result.Missing)))
	}
	if result.UploadURI != "" {
		fmt.Println(successStyle.Render("✓ Uploaded: " + result.UploadURI))
	}
}
