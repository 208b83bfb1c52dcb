package imagesearch

import (
	"context"
	"errors"
	"log/slog"
)

type Descriptor struct {
	URL         string
	Caption     string
	Attribution string
}

type Mode int

const (
	ModeFallback Mode = iota
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "fallback"
}

// Resolution is the outcome of one Resolve call. Err records why the live
// search was abandoned and is nil when no credential is configured.
type Resolution struct {
	Images []Descriptor
	Mode   Mode
	Err    error
}

var errNoResults = errors.New("search returned no results")

type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]Descriptor, error)
}

type Resolver struct {
	live        Searcher
	placeholder *Placeholder
}

// NewResolver builds a resolver; a nil live searcher means fallback only.
func NewResolver(live Searcher, placeholder *Placeholder) *Resolver {
	if placeholder == nil {
		placeholder = NewPlaceholder("")
	}
	return &Resolver{
		live:        live,
		placeholder: placeholder,
	}
}

// Resolve always returns exactly max(count, 0) descriptors.
func (r *Resolver) Resolve(ctx context.Context, query string, count int) Resolution {
	if count <= 0 {
		return Resolution{Images: []Descriptor{}, Mode: ModeFallback}
	}
	if r.live == nil {
		return Resolution{Images: r.placeholder.Generate(query, count), Mode: ModeFallback}
	}

	images, err := r.live.Search(ctx, query, count)
	if err == nil && len(images) == 0 {
		err = errNoResults
	}
	if err != nil {
		slog.Warn("Image search failed, using placeholders", "query", query, "error", err)
		return Resolution{Images: r.placeholder.Generate(query, count), Mode: ModeFallback, Err: err}
	}

	if len(images) > count {
		images = images[:count]
	}
	if missing := count - len(images); missing > 0 {
		slog.Debug("Padding search results with placeholders", "query", query, "missing", missing)
		images = append(images, r.placeholder.generateFrom(query, len(images), missing)...)
	}

	return Resolution{Images: images, Mode: ModeLive}
}
