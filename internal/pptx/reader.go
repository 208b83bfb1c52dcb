package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

const (
	nsDrawing = "http://schemas.openxmlformats.org/drawingml/2006/main"
	relNotes  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
)

// SlideText is the readable content of one slide.
type SlideText struct {
	Number   int
	Title    string
	Body     []string
	Other    []string
	Notes    string
	Pictures int
}

type shapeKind int

const (
	shapeOther shapeKind = iota
	shapeTitle
	shapeBody
)

type parsedShape struct {
	kind       shapeKind
	paragraphs []string
}

// ReadSlides opens a .pptx file and returns its slides in order.
func ReadSlides(pptxPath string) ([]SlideText, error) {
	r, err := zip.OpenReader(pptxPath)
	if err != nil {
		return nil, fmt.Errorf("open presentation: %w", err)
	}
	defer func() { _ = r.Close() }()

	return readSlides(&r.Reader)
}

// Decode reads slides from an in-memory package.
func Decode(ra io.ReaderAt, size int64) ([]SlideText, error) {
	r, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open presentation: %w", err)
	}
	return readSlides(r)
}

func readSlides(r *zip.Reader) ([]SlideText, error) {
	files := make(map[string]*zip.File, len(r.File))
	var numbers []int
	for _, f := range r.File {
		files[f.Name] = f
		if n, ok := slideNumber(f.Name); ok {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)

	slides := make([]SlideText, 0, len(numbers))
	for _, n := range numbers {
		name := fmt.Sprintf("ppt/slides/slide%d.xml", n)
		shapes, pictures, err := parseFile(files[name])
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}

		st := SlideText{Number: n, Pictures: pictures}
		for _, sh := range shapes {
			switch sh.kind {
			case shapeTitle:
				st.Title = strings.Join(sh.paragraphs, "\n")
			case shapeBody:
				st.Body = append(st.Body, sh.paragraphs...)
			default:
				st.Other = append(st.Other, sh.paragraphs...)
			}
		}

		notes, err := readNotes(files, n)
		if err != nil {
			return nil, fmt.Errorf("parse notes for slide %d: %w", n, err)
		}
		st.Notes = notes
		slides = append(slides, st)
	}
	return slides, nil
}

func slideNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, "ppt/slides/slide") || !strings.HasSuffix(name, ".xml") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// readNotes follows the slide's notesSlide relationship.
func readNotes(files map[string]*zip.File, n int) (string, error) {
	rels, ok := files[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n)]
	if !ok {
		return "", nil
	}
	target, err := relationshipTarget(rels, relNotes)
	if err != nil || target == "" {
		return "", err
	}

	notesFile, ok := files[path.Clean(path.Join("ppt/slides", target))]
	if !ok {
		return "", nil
	}
	shapes, _, err := parseFile(notesFile)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, sh := range shapes {
		if sh.kind == shapeBody {
			lines = append(lines, sh.paragraphs...)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func relationshipTarget(f *zip.File, relType string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Local != "Relationship" {
			continue
		}
		var target, typ string
		for _, a := range el.Attr {
			switch a.Name.Local {
			case "Target":
				target = a.Value
			case "Type":
				typ = a.Value
			}
		}
		if typ == relType {
			return target, nil
		}
	}
}

func parseFile(f *zip.File) ([]parsedShape, int, error) {
	if f == nil {
		return nil, 0, fmt.Errorf("missing part")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rc.Close() }()
	return parseShapes(rc)
}

// parseShapes collects paragraph text per shape and counts pictures.
func parseShapes(r io.Reader) ([]parsedShape, int, error) {
	dec := xml.NewDecoder(r)

	var (
		shapes   []parsedShape
		current  *parsedShape
		para     *strings.Builder
		pictures int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "sp":
				current = &parsedShape{kind: shapeOther}
			case "pic":
				pictures++
			case "ph":
				if current != nil {
					current.kind = normalizePlaceholder(attr(el, "type"))
				}
			case "p":
				if el.Name.Space == nsDrawing && current != nil {
					para = &strings.Builder{}
				}
			case "t":
				if el.Name.Space == nsDrawing && para != nil {
					var text string
					if err := dec.DecodeElement(&text, &el); err != nil {
						return nil, 0, err
					}
					para.WriteString(text)
				}
			}

		case xml.EndElement:
			switch el.Name.Local {
			case "p":
				if el.Name.Space == nsDrawing && current != nil && para != nil {
					if text := para.String(); strings.TrimSpace(text) != "" {
						current.paragraphs = append(current.paragraphs, text)
					}
					para = nil
				}
			case "sp":
				if current != nil && len(current.paragraphs) > 0 {
					shapes = append(shapes, *current)
				}
				current = nil
			}
		}
	}

	return shapes, pictures, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// normalizePlaceholder maps a placeholder type; an untyped placeholder is a
// content body.
func normalizePlaceholder(ph string) shapeKind {
	switch ph {
	case "title", "ctrTitle":
		return shapeTitle
	case "body", "subTitle", "obj", "":
		return shapeBody
	default:
		return shapeOther
	}
}
