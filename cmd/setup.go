package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"deckcraft/internal/storage"
	"deckcraft/pkg/config"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Deckcraft",
	Long:  `Configure API keys, create the output directory, and write a .env file for Deckcraft.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("Deckcraft Setup"))

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	outputDir := cfg.Output.Dir

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Creating directories", func() error { return createDirectories(outputDir) }},
		{"Configuring environment", configureEnv},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	printNextSteps(outputDir)
	return nil
}

func createDirectories(outputDir string) error {
	if err := storage.NewLocalStorage(outputDir).EnsureOutputDir(); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ Created " + outputDir + "/"))
	return nil
}

func configureEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return nil
		}
	}

	env := make(map[string]string)

	if err := configureImageKeys(env); err != nil {
		return err
	}

	if err := configureGCP(env); err != nil {
		return err
	}

	return writeEnvFile(env)
}

func configureImageKeys(env map[string]string) error {
	fmt.Println(infoStyle.Render(`
Both keys are optional. Without an Unsplash key every slide gets a
generated placeholder picture instead of a photo.
`))

	var unsplashKey, serpKey string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Unsplash Access Key").
				Description("https://unsplash.com/oauth/applications").
				EchoMode(huh.EchoModePassword).
				Value(&unsplashKey),
			huh.NewInput().
				Title("SerpAPI Key").
				Description("https://serpapi.com/manage-api-key").
				EchoMode(huh.EchoModePassword).
				Value(&serpKey),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	env["UNSPLASH_ACCESS_KEY"] = strings.TrimSpace(unsplashKey)
	env["SERPAPI_KEY"] = strings.TrimSpace(serpKey)
	return nil
}

func configureGCP(env map[string]string) error {
	var setupGCP bool
	if err := huh.NewConfirm().
		Title("Setup Google Cloud?").
		Description("Required for deck uploads and Secret Manager keys").
		Value(&setupGCP).
		Run(); err != nil {
		return err
	}

	if !setupGCP {
		return nil
	}

	project := ""
	if commandExists("gcloud") {
		project = getActiveProject()
	} else {
		fmt.Println(warnStyle.Render("gcloud CLI not found - install from https://cloud.google.com/sdk/docs/install"))
	}

	bucket := ""
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Google Cloud Project").
				Value(&project).
				Validate(required("Project ID")),
			huh.NewInput().
				Title("GCS Bucket").
				Description("Decks are uploaded here with --upload").
				Placeholder("my-decks").
				Value(&bucket),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	project = strings.TrimSpace(project)
	env["GOOGLE_CLOUD_PROJECT"] = project
	env["GCS_BUCKET"] = strings.TrimSpace(bucket)

	if commandExists("gcloud") {
		if err := enableGCPAPIs(project); err != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf("API enablement failed: %v", err)))
		}
	}

	return nil
}

func getActiveProject() string {
	out, err := exec.Command("gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func enableGCPAPIs(project string) error {
	apis := []string{
		"storage.googleapis.com",
		"secretmanager.googleapis.com",
	}

	return runWithSpinner("Enabling APIs", func() error {
		args := append([]string{"services", "enable"}, apis...)
		args = append(args, "--project", project)
		return runSetupCmd("gcloud", args...)
	})
}

func writeEnvFile(env map[string]string) error {
	f, err := os.Create(".env")
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	order := []string{
		"UNSPLASH_ACCESS_KEY",
		"SERPAPI_KEY",
		"GOOGLE_CLOUD_PROJECT",
		"GCS_BUCKET",
	}

	for _, key := range order {
		if val, ok := env[key]; ok && val != "" {
			_, _ = fmt.Fprintf(f, "%s=%s\n", key, val)
		}
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	return nil
}

func printNextSteps(outputDir string) {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Run: deckcraft generate -t \"your topic\"")
	fmt.Println("  2. Inspect the result: deckcraft inspect " + filepath.Join(outputDir, "<file>.pptx"))
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runSetupCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %s", err, stderr.String())
	}
	return nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
