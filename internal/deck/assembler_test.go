package deck

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"
	"time"

	"deckcraft/internal/assets"
	"deckcraft/internal/content"
	"deckcraft/internal/imagesearch"
	"deckcraft/pkg/templates"
)

var fixedNow = func() time.Time {
	return time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)
}

type mockResolver struct {
	mode    imagesearch.Mode
	queries []string
}

func (m *mockResolver) Resolve(_ context.Context, query string, count int) imagesearch.Resolution {
	m.queries = append(m.queries, query)
	images := make([]imagesearch.Descriptor, count)
	for i := range images {
		images[i] = imagesearch.Descriptor{URL: "http://img/" + query, Caption: query, Attribution: "Ada"}
	}
	return imagesearch.Resolution{Images: images, Mode: m.mode}
}

type mockFetcher struct {
	t       *testing.T
	failFor map[string]bool
	data    []byte
	urls    []string
	paths   []string
}

func (m *mockFetcher) Fetch(_ context.Context, url, dest string) assets.Outcome {
	m.urls = append(m.urls, url)
	if m.failFor[url] {
		return assets.Outcome{Err: errors.New("simulated failure")}
	}
	if err := os.WriteFile(dest, m.data, 0o644); err != nil {
		m.t.Fatalf("WriteFile() error = %v", err)
	}
	m.paths = append(m.paths, dest)
	return assets.Outcome{Path: dest}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 12))
	for x := 0; x < 16; x++ {
		for y := 0; y < 12; y++ {
			img.Set(x, y, color.NRGBA{R: 0x10, G: 0x66, B: 0xcc, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func testPlan(t *testing.T, set, topic string) content.Plan {
	t.Helper()
	table, err := templates.Default()
	if err != nil {
		t.Fatalf("templates.Default() error = %v", err)
	}
	s, err := table.Set(set)
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	return content.NewPlanner(s).Plan(topic)
}

func TestAssembleStructure(t *testing.T) {
	for _, set := range []string{"extended", "classic"} {
		t.Run(set, func(t *testing.T) {
			plan := testPlan(t, set, "Quantum Computing")
			fetcher := &mockFetcher{t: t, data: testPNG(t)}
			a := NewAssembler(&mockResolver{}, fetcher, Options{TempDir: t.TempDir(), Now: fixedNow})

			d := a.Assemble(context.Background(), "Quantum Computing", plan)

			if len(d.Slides) != len(plan.Headings)+2 {
				t.Fatalf("len(Slides) = %d, want %d", len(d.Slides), len(plan.Headings)+2)
			}
			if d.Slides[0].Kind != KindTitle {
				t.Errorf("first slide kind = %v, want title", d.Slides[0].Kind)
			}
			for i, heading := range plan.Headings {
				s := d.Slides[i+1]
				if s.Kind != KindContent || s.Heading != heading {
					t.Errorf("slide %d = %v %q, want content %q", i+1, s.Kind, s.Heading, heading)
				}
				if s.BodyText() == "" {
					t.Errorf("slide %d has empty body", i+1)
				}
				if s.Image == nil {
					t.Errorf("slide %d has no image", i+1)
				}
			}
			last := d.Slides[len(d.Slides)-1]
			if last.Kind != KindConclusion || last.Heading != "Conclusion" {
				t.Errorf("last slide = %v %q, want conclusion", last.Kind, last.Heading)
			}
			if last.Image != nil || last.Background != nil {
				t.Error("conclusion slide should have no image")
			}
		})
	}
}

func TestAssembleTitleSlide(t *testing.T) {
	fetcher := &mockFetcher{t: t, data: testPNG(t)}
	resolver := &mockResolver{}
	a := NewAssembler(resolver, fetcher, Options{TempDir: t.TempDir(), Now: fixedNow})

	d := a.Assemble(context.Background(), "quantum computing", testPlan(t, "", "quantum computing"))
	title := d.Slides[0]

	if title.Heading != "Quantum Computing" {
		t.Errorf("Heading = %q, want Quantum Computing", title.Heading)
	}
	if want := "Comprehensive Overview\nGenerated on March 05, 2026"; title.BodyText() != want {
		t.Errorf("BodyText() = %q, want %q", title.BodyText(), want)
	}
	if title.Background == nil {
		t.Fatal("title slide has no background")
	}
	if title.Background.Rect != d.Theme.FullBleed() {
		t.Errorf("background rect = %+v, want full bleed", title.Background.Rect)
	}
	if title.Image != nil {
		t.Error("title slide should only carry a background")
	}
	if resolver.queries[0] != "quantum computing background" {
		t.Errorf("background query = %q", resolver.queries[0])
	}
	if title.Notes == "" {
		t.Error("title slide has no notes")
	}
}

func TestAssembleOneFetchFails(t *testing.T) {
	plan := testPlan(t, "", "Quantum Computing")
	failing := plan.Headings[2]
	failURL := "http://img/" + SearchQuery(failing, "Quantum Computing")

	fetcher := &mockFetcher{t: t, data: testPNG(t), failFor: map[string]bool{failURL: true}}
	a := NewAssembler(&mockResolver{}, fetcher, Options{TempDir: t.TempDir(), Now: fixedNow})

	d := a.Assemble(context.Background(), "Quantum Computing", plan)

	for i, s := range d.Slides[1 : len(d.Slides)-1] {
		if s.Heading == failing {
			if s.Image != nil {
				t.Errorf("slide %q should have no image", s.Heading)
			}
			if s.BodyText() == "" {
				t.Errorf("slide %q lost its body", s.Heading)
			}
			continue
		}
		if s.Image == nil {
			t.Errorf("slide %d %q missing image", i+1, s.Heading)
		}
	}
	if d.Slides[0].Background == nil {
		t.Error("title background affected by unrelated failure")
	}
}

func TestAssembleUndecodableImage(t *testing.T) {
	fetcher := &mockFetcher{t: t, data: []byte("<html>blocked</html>")}
	a := NewAssembler(&mockResolver{}, fetcher, Options{TempDir: t.TempDir(), Now: fixedNow})

	d := a.Assemble(context.Background(), "Go", testPlan(t, "classic", "Go"))

	if n := d.ImageCount(); n != 0 {
		t.Errorf("ImageCount() = %d, want 0", n)
	}
	if len(d.Slides) != 7 {
		t.Errorf("len(Slides) = %d, want 7", len(d.Slides))
	}
}

func TestAssembleRemovesTempFiles(t *testing.T) {
	tempDir := t.TempDir()
	fetcher := &mockFetcher{t: t, data: testPNG(t)}
	a := NewAssembler(&mockResolver{}, fetcher, Options{TempDir: tempDir, Now: fixedNow})

	a.Assemble(context.Background(), "Go", testPlan(t, "classic", "Go"))

	if len(fetcher.paths) == 0 {
		t.Fatal("no images were fetched")
	}
	for _, p := range fetcher.paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("temp file %s still exists", p)
		}
	}
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir has %d leftover entries", len(entries))
	}
}

func TestAssembleWithoutImages(t *testing.T) {
	a := NewAssembler(nil, nil, Options{Now: fixedNow})
	d := a.Assemble(context.Background(), "Go", testPlan(t, "", "Go"))

	if d.ImageCount() != 0 {
		t.Errorf("ImageCount() = %d, want 0", d.ImageCount())
	}
	if len(d.Slides) != 12 {
		t.Errorf("len(Slides) = %d, want 12", len(d.Slides))
	}
}

func TestAssembleCaptions(t *testing.T) {
	tests := []struct {
		name        string
		mode        imagesearch.Mode
		wantCaption bool
	}{
		{name: "liveImage", mode: imagesearch.ModeLive, wantCaption: true},
		{name: "placeholderImage", mode: imagesearch.ModeFallback, wantCaption: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mockFetcher{t: t, data: testPNG(t)}
			a := NewAssembler(&mockResolver{mode: tt.mode}, fetcher, Options{TempDir: t.TempDir(), Now: fixedNow})
			d := a.Assemble(context.Background(), "Go", testPlan(t, "classic", "Go"))

			caption := d.Slides[1].Caption
			if tt.wantCaption && caption != "Photo: What is Go by Ada" {
				t.Errorf("Caption = %q", caption)
			}
			if !tt.wantCaption && caption != "" {
				t.Errorf("Caption = %q, want empty", caption)
			}
		})
	}
}

func TestAssembleQuantumComputingFallback(t *testing.T) {
	topic := "Quantum Computing"
	fetcher := &mockFetcher{t: t, data: testPNG(t)}
	resolver := imagesearch.NewResolver(nil, imagesearch.NewPlaceholder(""))
	a := NewAssembler(resolver, fetcher, Options{TempDir: t.TempDir(), Now: fixedNow})

	d := a.Assemble(context.Background(), topic, testPlan(t, "", topic))

	if d.Slides[0].Heading != topic {
		t.Errorf("title = %q, want %q", d.Slides[0].Heading, topic)
	}
	if !strings.Contains(d.Slides[0].BodyText(), "Generated on March 05, 2026") {
		t.Errorf("subtitle = %q", d.Slides[0].BodyText())
	}
	for _, url := range fetcher.urls {
		if !strings.Contains(url, "Quantum+Computing") {
			t.Errorf("url %q does not embed query", url)
		}
	}
	if len(fetcher.urls) != len(d.Slides)-1 {
		t.Errorf("fetched %d urls, want %d", len(fetcher.urls), len(d.Slides)-1)
	}
	conclusion := d.Slides[len(d.Slides)-1]
	if conclusion.Body[0].Text() != "Quantum Computing offers significant value and opportunities" {
		t.Errorf("first conclusion line = %q", conclusion.Body[0].Text())
	}
	for _, p := range conclusion.Body {
		if !p.Bullet {
			t.Errorf("conclusion line %q is not a bullet", p.Text())
		}
	}
}

func TestAssembleTopicIsLiteralText(t *testing.T) {
	topics := []string{
		"*Rust*",
		"__init__ methods",
		"1. Python",
		"# Hashtags",
		"<b>Go</b>",
		"C++ & ünïcode",
		"[links](http://x) `code` \\ back",
	}

	table, err := templates.Default()
	if err != nil {
		t.Fatalf("templates.Default() error = %v", err)
	}
	set, err := table.Set("")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	for _, topic := range topics {
		t.Run(topic, func(t *testing.T) {
			plan := content.NewPlanner(set).Plan(topic)
			a := NewAssembler(nil, nil, Options{Now: fixedNow})
			d := a.Assemble(context.Background(), topic, plan)

			for i, section := range set.Sections {
				s := d.Slides[i+1]
				if !strings.Contains(s.Heading, topic) {
					t.Errorf("heading %q does not contain %q", s.Heading, topic)
				}
				if strings.Contains(section.Body, "{{.Topic}}") && !strings.Contains(s.BodyText(), topic) {
					t.Errorf("body %q does not contain %q", s.BodyText(), topic)
				}
			}

			conclusion := d.Slides[len(d.Slides)-1]
			if got, want := conclusion.Body[0].Text(), topic+" offers significant value and opportunities"; got != want {
				t.Errorf("first conclusion line = %q, want %q", got, want)
			}
		})
	}
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		heading string
		topic   string
		want    string
	}{
		{heading: "What is Go?", topic: "Go", want: "What is Go"},
		{heading: "History of Go", topic: "Go", want: "History Go"},
		{heading: "Key features of Quantum Computing", topic: "Quantum Computing", want: "Key features Quantum Computing"},
		{heading: "Introduction to Go", topic: "Go", want: "Introduction to Go"},
		{heading: "Why? Why not?", topic: "", want: "Why Why not"},
	}

	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			if got := SearchQuery(tt.heading, tt.topic); got != tt.want {
				t.Errorf("SearchQuery(%q, %q) = %q, want %q", tt.heading, tt.topic, got, tt.want)
			}
		})
	}
}

func TestPixels(t *testing.T) {
	if got := Pixels(Inches(5)); got != 750 {
		t.Errorf("Pixels(5in) = %d, want 750", got)
	}
	if got := Pixels(6858000); got != 1125 {
		t.Errorf("Pixels(7.5in) = %d, want 1125", got)
	}
}
