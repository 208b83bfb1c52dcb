// Package pptx serializes decks as Office Open XML presentations and reads
// slide text back out of them.
package pptx

import (
	"archive/zip"
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"deckcraft/internal/deck"
)

//go:embed parts/*.tmpl
var partsFS embed.FS

var parts = template.Must(template.New("pptx").
	Funcs(template.FuncMap{"esc": escape}).
	ParseFS(partsFS, "parts/*.tmpl"))

type entry struct {
	name string
	tmpl string
	data any
}

// Encode writes d as a .pptx package to w.
func Encode(w io.Writer, d *deck.Deck) error {
	if d == nil || len(d.Slides) == 0 {
		return errors.New("deck has no slides")
	}

	pkg := buildPackage(d)
	modified := d.Created
	if modified.IsZero() {
		modified = time.Now()
	}

	zw := zip.NewWriter(w)
	for _, e := range pkg.entries() {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return fmt.Errorf("create %s: %w", e.name, err)
		}
		if err := parts.ExecuteTemplate(fw, e.tmpl, e.data); err != nil {
			return fmt.Errorf("render %s: %w", e.name, err)
		}
	}
	for _, m := range pkg.Media {
		name := "ppt/media/" + m.Name
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store, Modified: modified})
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := fw.Write(m.Data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close package: %w", err)
	}
	return nil
}

func (pkg *packageData) entries() []entry {
	entries := []entry{
		{"[Content_Types].xml", "content_types.xml.tmpl", pkg},
		{"_rels/.rels", "package.rels.tmpl", pkg},
		{"docProps/app.xml", "app.xml.tmpl", pkg},
		{"docProps/core.xml", "core.xml.tmpl", pkg},
		{"ppt/presentation.xml", "presentation.xml.tmpl", pkg},
		{"ppt/_rels/presentation.xml.rels", "presentation.xml.rels.tmpl", pkg},
		{"ppt/presProps.xml", "presProps.xml.tmpl", pkg},
		{"ppt/viewProps.xml", "viewProps.xml.tmpl", pkg},
		{"ppt/tableStyles.xml", "tableStyles.xml.tmpl", pkg},
		{"ppt/theme/theme1.xml", "theme.xml.tmpl", pkg},
		{"ppt/theme/theme2.xml", "theme.xml.tmpl", pkg},
		{"ppt/slideMasters/slideMaster1.xml", "slideMaster.xml.tmpl", pkg},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", "slideMaster.xml.rels.tmpl", pkg},
		{"ppt/notesMasters/notesMaster1.xml", "notesMaster.xml.tmpl", pkg},
		{"ppt/notesMasters/_rels/notesMaster1.xml.rels", "notesMaster.xml.rels.tmpl", pkg},
	}
	for i, l := range pkg.Layouts {
		entries = append(entries,
			entry{fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1), "slideLayout.xml.tmpl", l},
			entry{fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", i+1), "slideLayout.xml.rels.tmpl", l},
		)
	}
	for _, s := range pkg.Slides {
		entries = append(entries,
			entry{fmt.Sprintf("ppt/slides/slide%d.xml", s.Number), "slide.xml.tmpl", s},
			entry{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", s.Number), "part.rels.tmpl", s.Rels},
			entry{fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", s.Number), "notesSlide.xml.tmpl", s},
			entry{fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", s.Number), "part.rels.tmpl", s.NotesRels},
		)
	}
	return entries
}

func escape(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}
