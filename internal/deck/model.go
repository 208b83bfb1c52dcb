package deck

import (
	"strings"
	"time"

	"deckcraft/internal/assets"
	"deckcraft/internal/imagesearch"
)

type Kind int

const (
	KindTitle Kind = iota
	KindContent
	KindConclusion
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindConclusion:
		return "conclusion"
	default:
		return "content"
	}
}

type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

type Paragraph struct {
	Runs   []Run
	Bullet bool
}

func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Image is a picture placed on a slide at Rect.
type Image struct {
	Picture assets.Picture
	Source  imagesearch.Descriptor
	Live    bool
	Rect    Rect
}

type Slide struct {
	Kind    Kind
	Heading string
	Body    []Paragraph
	Notes   string
	Image   *Image
	// Background sits behind every other shape on the slide.
	Background *Image
	Caption    string
}

// BodyText joins the body paragraphs with newlines.
func (s Slide) BodyText() string {
	lines := make([]string, len(s.Body))
	for i, p := range s.Body {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n")
}

type Deck struct {
	Topic   string
	Title   string
	Created time.Time
	Theme   Theme
	Slides  []Slide
}

func (d *Deck) ImageCount() int {
	n := 0
	for _, s := range d.Slides {
		if s.Image != nil {
			n++
		}
		if s.Background != nil {
			n++
		}
	}
	return n
}
