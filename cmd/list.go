package cmd

import (
	"fmt"

	"deckcraft/internal/storage"
	"deckcraft/pkg/config"

	"github.com/spf13/cobra"
)

var listRemote bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated decks",
	Long:  `List decks in the output directory, or in the configured GCS bucket with --remote.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listRemote, "remote", "r", false, "List decks in Google Cloud Storage")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	var decks []string
	if listRemote {
		gcs, err := storage.NewGCSStorage(ctx, storage.GCSConfig{
			Bucket:          cfg.GCSBucket,
			Prefix:          cfg.GCS.Prefix,
			CredentialsFile: cfg.GCS.CredentialsFile,
		})
		if err != nil {
			return err
		}
		defer func() { _ = gcs.Close() }()

		names, err := gcs.ListDecks(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			decks = append(decks, fmt.Sprintf("gs://%s/%s", cfg.GCSBucket, name))
		}
	} else {
		decks, err = storage.NewLocalStorage(cfg.Output.Dir).ListDecks()
		if err != nil {
			return err
		}
	}

	if len(decks) == 0 {
		fmt.Println(infoStyle.Render("No decks found"))
		return nil
	}
	for _, d := range decks {
		fmt.Println(d)
	}
	return nil
}
