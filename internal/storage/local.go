package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type LocalStorage struct {
	outputDir string
}

func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{
		outputDir: outputDir,
	}
}

func (s *LocalStorage) OutputDir() string {
	return s.outputDir
}

func (s *LocalStorage) DeckPath(topic string) string {
	return filepath.Join(s.outputDir, DeckFilename(topic))
}

func (s *LocalStorage) EnsureOutputDir() error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

// SaveDeck streams write into the deck path for topic. Output goes to a
// sibling temp file that is renamed into place only after write succeeds.
func (s *LocalStorage) SaveDeck(topic string, write func(io.Writer) error) (string, error) {
	if err := s.EnsureOutputDir(); err != nil {
		return "", err
	}
	path := s.DeckPath(topic)

	tmp, err := os.CreateTemp(s.outputDir, ".deck-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write deck: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close deck: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("move deck into place: %w", err)
	}

	return path, nil
}

func (s *LocalStorage) ListDecks() ([]string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("read output directory: %w", err)
	}

	var decks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), deckSuffix) {
			decks = append(decks, filepath.Join(s.outputDir, entry.Name()))
		}
	}
	sort.Strings(decks)

	return decks, nil
}
