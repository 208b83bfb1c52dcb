package storage

import (
	"context"
	"strings"
	"unicode"
)

const (
	deckSuffix   = "_presentation.pptx"
	untitledDeck = "untitled"
)

// Uploader copies a finished deck to remote storage and returns its URI.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// SanitizeTopic keeps letters, digits, spaces, hyphens and underscores,
// trims trailing spaces and maps the remaining spaces to underscores.
func SanitizeTopic(topic string) string {
	var b strings.Builder
	for _, r := range topic {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimRight(b.String(), " ")
	return strings.ReplaceAll(safe, " ", "_")
}

// DeckFilename is the artifact name for topic.
func DeckFilename(topic string) string {
	safe := SanitizeTopic(topic)
	if safe == "" {
		safe = untitledDeck
	}
	return safe + deckSuffix
}
