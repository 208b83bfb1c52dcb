package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "deckcraft/1.0 (+https://github.com/deckcraft)"
)

// Outcome reports one fetch. Path is set only when Err is nil.
type Outcome struct {
	Path string
	Err  error
}

func (o Outcome) OK() bool {
	return o.Err == nil && o.Path != ""
}

type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads url into dest. A partially written file never survives a
// failed fetch.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) Outcome {
	if url == "" {
		return Outcome{Err: errors.New("empty url")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Outcome{Err: fmt.Errorf("download image: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Outcome{Err: fmt.Errorf("download image: %s", resp.Status)}
	}

	if err := writeAtomic(dest, resp.Body); err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Path: dest}
}

func writeAtomic(dest string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".fetch-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
