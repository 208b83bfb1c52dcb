package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"deckcraft/internal/pptx"
	"deckcraft/internal/storage"
	"deckcraft/pkg/config"

	"github.com/spf13/cobra"
)

var inspectNotes bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <deck.pptx | gs://bucket/object>",
	Short: "Print the text of a generated deck",
	Long:  `Print each slide's title, body, captions, picture count and optionally its speaker notes.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectNotes, "notes", "n", false, "Include speaker notes")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	if bucket, object, ok := storage.ParseURI(path); ok {
		local, cleanup, err := downloadDeck(cmd.Context(), bucket, object)
		if err != nil {
			return err
		}
		defer cleanup()
		path = local
	}

	slides, err := pptx.ReadSlides(path)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(filepath.Base(args[0])))
	for _, s := range slides {
		fmt.Println(headingStyle.Render(fmt.Sprintf("%d. %s", s.Number, s.Title)))
		for _, line := range s.Body {
			fmt.Println("   " + line)
		}
		for _, line := range s.Other {
			fmt.Println(mutedStyle.Render("   " + line))
		}
		if s.Pictures > 0 {
			fmt.Println(mutedStyle.Render(fmt.Sprintf("   [%d picture(s)]", s.Pictures)))
		}
		if inspectNotes && s.Notes != "" {
			for _, line := range strings.Split(s.Notes, "\n") {
				fmt.Println(infoStyle.Render("   > " + line))
			}
		}
		fmt.Println()
	}

	return nil
}

func downloadDeck(ctx context.Context, bucket, object string) (string, func(), error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return "", nil, err
	}

	gcs, err := storage.NewGCSStorage(ctx, storage.GCSConfig{
		Bucket:          bucket,
		CredentialsFile: cfg.GCS.CredentialsFile,
	})
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = gcs.Close() }()

	dir, err := os.MkdirTemp("", "deckcraft-inspect-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	local := filepath.Join(dir, filepath.Base(object))
	if err := gcs.Download(ctx, object, local); err != nil {
		cleanup()
		return "", nil, err
	}
	return local, cleanup, nil
}
