package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"deckcraft/internal/deck"
	"deckcraft/internal/pptx"
)

var ErrEmptyTopic = errors.New("topic is empty")

type Pipeline struct {
	service *Service
}

type GenerateResult struct {
	Topic  string
	Path   string
	Slides int
	Images int
	// Placeholder counts pictures that came from the fallback generator.
	Placeholder int
	// Missing counts picture slots left empty after a failed fetch or embed.
	Missing   int
	UploadURI string
}

// Degraded reports whether any slide lost its live picture.
func (r *GenerateResult) Degraded() bool {
	return r.Placeholder > 0 || r.Missing > 0
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

// Generate builds and saves the deck for topic. Image failures degrade the
// deck but never fail the run. When an upload fails the result still
// describes the saved local deck.
func (pipeline *Pipeline) Generate(ctx context.Context, topic string) (*GenerateResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	svc := pipeline.service

	slog.Info("Planning content...", "topic", topic)
	plan := svc.planner.Plan(topic)

	slog.Info("Assembling slides...", "slides", len(plan.Headings)+2)
	d := svc.assembler.Assemble(ctx, topic, plan)

	slog.Info("Writing presentation...", "dir", svc.storage.OutputDir())
	path, err := svc.storage.SaveDeck(topic, func(w io.Writer) error {
		return pptx.Encode(w, d)
	})
	if err != nil {
		return nil, fmt.Errorf("save deck: %w", err)
	}

	result := summarize(d)
	result.Path = path

	if svc.uploader != nil {
		slog.Info("Uploading presentation...", "path", path)
		uri, err := svc.uploader.Upload(ctx, path)
		if err != nil {
			return result, fmt.Errorf("upload deck: %w", err)
		}
		result.UploadURI = uri
	}

	return result, nil
}

func summarize(d *deck.Deck) *GenerateResult {
	result := &GenerateResult{
		Topic:  d.Topic,
		Slides: len(d.Slides),
		Images: d.ImageCount(),
	}
	for _, s := range d.Slides {
		var img *deck.Image
		switch s.Kind {
		case deck.KindTitle:
			img = s.Background
		case deck.KindContent:
			img = s.Image
		default:
			continue
		}
		switch {
		case img == nil:
			result.Missing++
		case !img.Live:
			result.Placeholder++
		}
	}
	return result
}
