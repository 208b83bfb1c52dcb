package pptx

import (
	"fmt"
	"strings"
	"time"

	"deckcraft/internal/deck"
)

// Fixed relationship ids in presentation.xml.rels; slides follow.
const firstSlideRel = 7

type packageData struct {
	Title   string
	Topic   string
	Created string
	Theme   deck.Theme
	Master  layoutPart
	Layouts []layoutPart
	Slides  []slidePart
	Media   []mediaPart
}

type layoutPart struct {
	Type  string
	Name  string
	Title shapePart
	Body  shapePart
}

type slidePart struct {
	Number     int
	SlideID    int
	RelID      string
	Title      shapePart
	Body       shapePart
	Background *picturePart
	Picture    *picturePart
	Caption    *shapePart
	Notes      []string
	Rels       []relationship
	NotesRels  []relationship
}

type shapePart struct {
	ID          int
	Name        string
	Placeholder string
	Index       int
	Anchor      string
	Rect        deck.Rect
	Paragraphs  []paragraphPart
}

type paragraphPart struct {
	Bullet     bool
	Align      string
	SpaceAfter int
	Runs       []runPart
}

type runPart struct {
	Text   string
	Size   int
	Bold   bool
	Italic bool
	Color  string
	Font   string
}

type picturePart struct {
	ID    int
	Name  string
	Descr string
	RelID string
	Rect  deck.Rect
}

type mediaPart struct {
	Name        string
	ContentType string
	Data        []byte
}

type relationship struct {
	ID     string
	Type   string
	Target string
}

// hundredths converts points to the 1/100 pt units used by sz and spcPts.
func hundredths(pt float64) int {
	return int(pt*100 + 0.5)
}

func buildPackage(d *deck.Deck) *packageData {
	created := d.Created
	if created.IsZero() {
		created = time.Now()
	}
	theme := d.Theme

	pkg := &packageData{
		Title:   d.Title,
		Topic:   d.Topic,
		Created: created.UTC().Format("2006-01-02T15:04:05Z"),
		Theme:   theme,
		Master:  layoutFor(theme, deck.KindContent, "title", "body"),
		Layouts: []layoutPart{
			layoutFor(theme, deck.KindTitle, "ctrTitle", "subTitle"),
			layoutFor(theme, deck.KindContent, "title", "body"),
		},
		Slides: make([]slidePart, 0, len(d.Slides)),
	}
	pkg.Layouts[0].Type, pkg.Layouts[0].Name = "title", "Title Slide"
	pkg.Layouts[1].Type, pkg.Layouts[1].Name = "obj", "Title and Content"

	for i, s := range d.Slides {
		pkg.Slides = append(pkg.Slides, pkg.buildSlide(i+1, s))
	}
	return pkg
}

func layoutFor(theme deck.Theme, kind deck.Kind, titleType, bodyType string) layoutPart {
	l := theme.Layout(kind)
	lp := layoutPart{
		Title: shapePart{ID: 2, Name: "Title 1", Placeholder: titleType, Rect: l.Title},
		Body:  shapePart{ID: 3, Name: "Text Placeholder 2", Placeholder: bodyType, Index: 1, Rect: l.Body},
	}
	if kind == deck.KindTitle {
		lp.Title.Anchor = "b"
	}
	return lp
}

func (pkg *packageData) buildSlide(n int, s deck.Slide) slidePart {
	theme := pkg.Theme
	layout := theme.Layout(s.Kind)

	sp := slidePart{
		Number:  n,
		SlideID: 255 + n,
		RelID:   fmt.Sprintf("rId%d", firstSlideRel+n-1),
		Notes:   noteLines(s.Notes),
	}

	layoutIndex := 2
	titleType, bodyType, align := "title", "body", ""
	if s.Kind == deck.KindTitle {
		layoutIndex = 1
		titleType, bodyType, align = "ctrTitle", "subTitle", "ctr"
	}
	sp.Rels = []relationship{
		{ID: "rId1", Type: "slideLayout", Target: fmt.Sprintf("../slideLayouts/slideLayout%d.xml", layoutIndex)},
		{ID: "rId2", Type: "notesSlide", Target: fmt.Sprintf("../notesSlides/notesSlide%d.xml", n)},
	}
	sp.NotesRels = []relationship{
		{ID: "rId1", Type: "notesMaster", Target: "../notesMasters/notesMaster1.xml"},
		{ID: "rId2", Type: "slide", Target: fmt.Sprintf("../slides/slide%d.xml", n)},
	}

	nextID := 2
	id := func() int {
		nextID++
		return nextID - 1
	}

	// Emitted first so it renders behind every other shape.
	if s.Background != nil {
		sp.Background = pkg.addPicture(&sp, id(), "Background", s.Background)
	}

	sp.Title = shapePart{
		ID:          id(),
		Name:        "Title",
		Placeholder: titleType,
		Rect:        layout.Title,
		Paragraphs: []paragraphPart{{
			Align: align,
			Runs:  []runPart{styledRun(deck.Run{Text: s.Heading}, layout.TitleStyle, theme.Font)},
		}},
	}
	if s.Kind == deck.KindTitle {
		sp.Title.Anchor = "b"
	}

	sp.Body = shapePart{
		ID:          id(),
		Name:        "Content",
		Placeholder: bodyType,
		Index:       1,
		Rect:        layout.Body,
		Paragraphs:  paragraphs(s.Body, layout.BodyStyle, theme.Font, align),
	}

	if s.Image != nil {
		sp.Picture = pkg.addPicture(&sp, id(), "Picture", s.Image)
	}
	if s.Caption != "" {
		sp.Caption = &shapePart{
			ID:   id(),
			Name: "Caption",
			Rect: theme.Caption,
			Paragraphs: []paragraphPart{{
				Runs: []runPart{styledRun(deck.Run{Text: s.Caption, Italic: true}, theme.CaptionStyle, theme.Font)},
			}},
		}
	}
	return sp
}

func (pkg *packageData) addPicture(sp *slidePart, id int, name string, img *deck.Image) *picturePart {
	media := fmt.Sprintf("image%d%s", len(pkg.Media)+1, img.Picture.Ext())
	pkg.Media = append(pkg.Media, mediaPart{
		Name:        media,
		ContentType: img.Picture.ContentType(),
		Data:        img.Picture.Data,
	})

	relID := fmt.Sprintf("rId%d", len(sp.Rels)+1)
	sp.Rels = append(sp.Rels, relationship{ID: relID, Type: "image", Target: "../media/" + media})

	return &picturePart{
		ID:    id,
		Name:  name,
		Descr: img.Source.Caption,
		RelID: relID,
		Rect:  img.Rect,
	}
}

func paragraphs(body []deck.Paragraph, style deck.TextStyle, font, align string) []paragraphPart {
	out := make([]paragraphPart, 0, len(body))
	for _, p := range body {
		pp := paragraphPart{
			Bullet:     p.Bullet,
			Align:      align,
			SpaceAfter: hundredths(style.SpaceAfterPt),
			Runs:       make([]runPart, 0, len(p.Runs)),
		}
		for _, r := range p.Runs {
			pp.Runs = append(pp.Runs, styledRun(r, style, font))
		}
		out = append(out, pp)
	}
	return out
}

func styledRun(r deck.Run, style deck.TextStyle, font string) runPart {
	return runPart{
		Text:   r.Text,
		Size:   hundredths(style.SizePt),
		Bold:   r.Bold || style.Bold,
		Italic: r.Italic,
		Color:  style.Color,
		Font:   font,
	}
}

func noteLines(notes string) []string {
	if strings.TrimSpace(notes) == "" {
		return nil
	}
	return strings.Split(strings.TrimSpace(notes), "\n")
}
