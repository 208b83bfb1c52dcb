package imagesearch

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
)

const (
	defaultPlaceholderURL = "https://placehold.co"
	placeholderSize       = "800x600"
	placeholderAttrib     = "Placeholder"
)

// Background colors for placeholder images. The choice is cosmetic only.
var placeholderColors = []string{
	"0066CC", "2563EB", "1E40AF", "7C3AED", "059669",
	"DC2626", "D97706", "374151", "0891B2", "DB2777",
}

type Placeholder struct {
	baseURL string
	pick    func(n int) int
}

func NewPlaceholder(baseURL string) *Placeholder {
	if baseURL == "" {
		baseURL = defaultPlaceholderURL
	}
	return &Placeholder{
		baseURL: strings.TrimRight(baseURL, "/"),
		pick:    rand.Intn,
	}
}

// Generate returns exactly count descriptors (none when count <= 0).
func (p *Placeholder) Generate(query string, count int) []Descriptor {
	if count <= 0 {
		return []Descriptor{}
	}
	return p.generateFrom(query, 0, count)
}

func (p *Placeholder) generateFrom(query string, start, count int) []Descriptor {
	images := make([]Descriptor, 0, count)
	escaped := url.QueryEscape(query)
	for i := start; i < start+count; i++ {
		color := placeholderColors[p.pick(len(placeholderColors))]
		images = append(images, Descriptor{
			URL:         fmt.Sprintf("%s/%s/%s/FFFFFF/png?text=%s+%d", p.baseURL, placeholderSize, color, escaped, i+1),
			Caption:     fmt.Sprintf("%s related image %d", query, i+1),
			Attribution: placeholderAttrib,
		})
	}
	return images
}
