package app

import (
	"context"
	"errors"
	"log/slog"

	"deckcraft/internal/assets"
	"deckcraft/internal/content"
	"deckcraft/internal/deck"
	"deckcraft/internal/imagesearch"
	"deckcraft/internal/storage"
	"deckcraft/pkg/config"
	"deckcraft/pkg/templates"
)

var ErrNoBucket = errors.New("GCS upload requested but GCS_BUCKET is not set")

type BuildOptions struct {
	// Upload forces GCS upload even when gcs.enabled is false.
	Upload bool
}

func BuildService(ctx context.Context, cfg *config.Config, opts BuildOptions) (*Service, error) {
	table, err := loadTemplates(cfg.Content.TemplatesPath)
	if err != nil {
		return nil, err
	}
	set, err := table.Set(cfg.Content.TemplateSet)
	if err != nil {
		return nil, err
	}

	var resolver deck.ImageResolver
	var fetcher deck.AssetFetcher
	if cfg.Images.Disabled {
		slog.Info("Image search disabled, decks will have no pictures")
	} else {
		var live imagesearch.Searcher
		if cfg.UnsplashAccessKey != "" {
			live = imagesearch.NewUnsplashClient(imagesearch.UnsplashConfig{
				AccessKey:   cfg.UnsplashAccessKey,
				BaseURL:     cfg.Images.SearchURL,
				Orientation: cfg.Images.Orientation,
				Timeout:     cfg.Images.SearchTimeoutDuration(),
			})
		} else {
			slog.Info("No Unsplash access key, using placeholder images")
		}
		resolver = imagesearch.NewResolver(live, imagesearch.NewPlaceholder(cfg.Images.PlaceholderURL))
		fetcher = assets.NewFetcher(cfg.Images.FetchTimeoutDuration())
	}

	assembler := deck.NewAssembler(resolver, fetcher, deck.Options{
		TempDir: cfg.Images.TempDir,
	})

	service := NewService(ServiceOptions{
		Config:    cfg,
		Planner:   content.NewPlanner(set),
		Assembler: assembler,
		Storage:   storage.NewLocalStorage(cfg.Output.Dir),
	})

	if opts.Upload || cfg.GCS.Enabled {
		if cfg.GCSBucket == "" {
			return nil, ErrNoBucket
		}
		gcs, err := storage.NewGCSStorage(ctx, storage.GCSConfig{
			Bucket:          cfg.GCSBucket,
			Prefix:          cfg.GCS.Prefix,
			CredentialsFile: cfg.GCS.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		service.uploader = gcs
		service.closers = append(service.closers, gcs.Close)
	}

	return service, nil
}

func loadTemplates(path string) (*templates.Table, error) {
	if path == "" {
		return templates.Default()
	}
	return templates.LoadFrom(path)
}
