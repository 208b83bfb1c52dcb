package deck

import (
	"reflect"
	"testing"
)

func TestParseMarkdown(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Paragraph
	}{
		{
			name: "plainText",
			src:  "Go is an important concept.",
			want: []Paragraph{{Runs: []Run{{Text: "Go is an important concept."}}}},
		},
		{
			name: "emphasis",
			src:  "Includes **speed** and *clarity*.",
			want: []Paragraph{{Runs: []Run{
				{Text: "Includes "},
				{Text: "speed", Bold: true},
				{Text: " and "},
				{Text: "clarity", Italic: true},
				{Text: "."},
			}}},
		},
		{
			name: "bulletList",
			src:  "Benefits:\n\n- one\n- *two*\n",
			want: []Paragraph{
				{Runs: []Run{{Text: "Benefits:"}}},
				{Runs: []Run{{Text: "one"}}, Bullet: true},
				{Runs: []Run{{Text: "two", Italic: true}}, Bullet: true},
			},
		},
		{
			name: "escapedPunctuation",
			src:  `\*Rust\* and \_\_init\_\_ \<b\>`,
			want: []Paragraph{{Runs: []Run{{Text: "*Rust* and __init__ <b>"}}}},
		},
		{
			name: "softBreaksJoin",
			src:  "first line\nsecond line",
			want: []Paragraph{{Runs: []Run{{Text: "first line second line"}}}},
		},
		{
			name: "headingIsBold",
			src:  "# Summary\n\nDone.",
			want: []Paragraph{
				{Runs: []Run{{Text: "Summary", Bold: true}}},
				{Runs: []Run{{Text: "Done."}}},
			},
		},
		{
			name: "unicodePassthrough",
			src:  "Künstliche Intelligenz: what's next?",
			want: []Paragraph{{Runs: []Run{{Text: "Künstliche Intelligenz: what's next?"}}}},
		},
		{
			name: "empty",
			src:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMarkdown(tt.src)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseMarkdown(%q) = %+v, want %+v", tt.src, got, tt.want)
			}
		})
	}
}

func TestBodyText(t *testing.T) {
	s := Slide{Body: parseMarkdown("The main features include **functionality** and *usability*.\n\n- a\n- b")}
	if want := "The main features include functionality and usability.\na\nb"; s.BodyText() != want {
		t.Errorf("BodyText() = %q, want %q", s.BodyText(), want)
	}
}
