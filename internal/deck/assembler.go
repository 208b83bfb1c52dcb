package deck

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deckcraft/internal/assets"
	"deckcraft/internal/content"
	"deckcraft/internal/imagesearch"
	"deckcraft/pkg/templates"
)

const subtitleText = "Comprehensive Overview"

type ImageResolver interface {
	Resolve(ctx context.Context, query string, count int) imagesearch.Resolution
}

type AssetFetcher interface {
	Fetch(ctx context.Context, url, dest string) assets.Outcome
}

type Options struct {
	// TempDir is the parent for per-run scratch directories. Empty means
	// the system default.
	TempDir string
	Theme   *Theme
	Now     func() time.Time
}

type Assembler struct {
	resolver ImageResolver
	fetcher  AssetFetcher
	tempDir  string
	theme    Theme
	now      func() time.Time
}

// NewAssembler returns an assembler. A nil resolver or fetcher produces decks
// without pictures.
func NewAssembler(resolver ImageResolver, fetcher AssetFetcher, opts Options) *Assembler {
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Assembler{
		resolver: resolver,
		fetcher:  fetcher,
		tempDir:  opts.TempDir,
		theme:    theme,
		now:      now,
	}
}

// Assemble builds the title slide, one content slide per heading and the
// conclusion slide, in that order. Image problems only ever cost the
// affected slide its picture.
func (a *Assembler) Assemble(ctx context.Context, topic string, plan content.Plan) *Deck {
	created := a.now()
	d := &Deck{
		Topic:   topic,
		Title:   templates.TitleCase(topic),
		Created: created,
		Theme:   a.theme,
		Slides:  make([]Slide, 0, len(plan.Headings)+2),
	}

	scratch := a.scratchDir()
	if scratch != "" {
		defer func() {
			if err := os.RemoveAll(scratch); err != nil {
				slog.Warn("Failed to remove scratch directory", "path", scratch, "error", err)
			}
		}()
	}

	title := Slide{
		Kind:    KindTitle,
		Heading: d.Title,
		Body: []Paragraph{
			{Runs: []Run{{Text: subtitleText}}},
			{Runs: []Run{{Text: "Generated on " + created.Format("January 02, 2006")}}},
		},
		Notes: plan.TitleNotes,
	}
	title.Background = a.picture(ctx, scratch, "title", topic+" background", "background", a.theme.FullBleed())
	d.Slides = append(d.Slides, title)

	for i, heading := range plan.Headings {
		slide := Slide{
			Kind:    KindContent,
			Heading: heading,
			Body:    parseMarkdown(plan.Bodies[heading]),
			Notes:   plan.Notes[heading],
		}
		name := fmt.Sprintf("slide_%d", i+1)
		if img := a.picture(ctx, scratch, name, SearchQuery(heading, topic), name, a.theme.Picture); img != nil {
			slide.Image = img
			if img.Live {
				slide.Caption = attribution(img.Source)
			}
		}
		d.Slides = append(d.Slides, slide)
	}

	conclusion := Slide{
		Kind:    KindConclusion,
		Heading: plan.Conclusion.Heading,
		Notes:   plan.Conclusion.Notes,
	}
	for _, line := range plan.Conclusion.Lines {
		for _, p := range parseMarkdown(line) {
			p.Bullet = true
			conclusion.Body = append(conclusion.Body, p)
		}
	}
	d.Slides = append(d.Slides, conclusion)

	slog.Debug("Deck assembled", "topic", topic, "slides", len(d.Slides), "images", d.ImageCount())
	return d
}

// SearchQuery derives an image query from a heading: "of <topic>" collapses
// to the topic and question marks are dropped.
func SearchQuery(heading, topic string) string {
	q := strings.ReplaceAll(heading, "?", "")
	if topic != "" {
		q = strings.ReplaceAll(q, "of "+topic, topic)
	}
	return strings.TrimSpace(q)
}

func attribution(src imagesearch.Descriptor) string {
	if src.Attribution == "" {
		return "Photo: " + src.Caption
	}
	return fmt.Sprintf("Photo: %s by %s", src.Caption, src.Attribution)
}

func (a *Assembler) scratchDir() string {
	if a.resolver == nil || a.fetcher == nil {
		return ""
	}
	dir, err := os.MkdirTemp(a.tempDir, "deckcraft-*")
	if err != nil {
		slog.Warn("Failed to create scratch directory, skipping images", "error", err)
		return ""
	}
	return dir
}

// picture resolves one image for query and loads it sized to rect. The
// downloaded file is removed before returning.
func (a *Assembler) picture(ctx context.Context, scratch, slide, query, name string, rect Rect) *Image {
	if scratch == "" {
		return nil
	}

	res := a.resolver.Resolve(ctx, query, 1)
	if len(res.Images) == 0 {
		slog.Warn("No image resolved", "slide", slide, "query", query)
		return nil
	}
	src := res.Images[0]

	out := a.fetcher.Fetch(ctx, src.URL, filepath.Join(scratch, name+".img"))
	if !out.OK() {
		slog.Warn("Image fetch failed", "slide", slide, "url", src.URL, "error", out.Err)
		return nil
	}
	defer removeTemp(out.Path)

	data, err := os.ReadFile(out.Path)
	if err != nil {
		slog.Warn("Failed to read image", "slide", slide, "path", out.Path, "error", err)
		return nil
	}
	pic, err := assets.Normalize(data, Pixels(rect.W), Pixels(rect.H))
	if err != nil {
		slog.Warn("Failed to embed image", "slide", slide, "url", src.URL, "error", err)
		return nil
	}

	return &Image{
		Picture: pic,
		Source:  src,
		Live:    res.Mode == imagesearch.ModeLive,
		Rect:    rect,
	}
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to delete temp image", "path", path, "error", err)
	}
}
