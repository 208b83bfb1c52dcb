package templates

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

var ErrUnknownSet = errors.New("unknown template set")

type Table struct {
	DefaultSet string         `yaml:"default_set"`
	Sets       map[string]Set `yaml:"sets"`
}

type Set struct {
	TitleNotes string     `yaml:"title_notes"`
	Sections   []Section  `yaml:"sections"`
	Conclusion Conclusion `yaml:"conclusion"`
}

type Section struct {
	Heading string `yaml:"heading"`
	Body    string `yaml:"body"`
	Notes   string `yaml:"notes"`
}

type Conclusion struct {
	Heading string   `yaml:"heading"`
	Lines   []string `yaml:"lines"`
	Notes   string   `yaml:"notes"`
}

type Params struct {
	Topic      string
	TitleTopic string
}

func NewParams(topic string) Params {
	return Params{Topic: topic, TitleTopic: TitleCase(topic)}
}

// NewMarkdownParams is NewParams for templates whose output is parsed as
// markdown. The topic is escaped so it always renders as literal text.
func NewMarkdownParams(topic string) Params {
	p := NewParams(topic)
	return Params{Topic: EscapeMarkdown(p.Topic), TitleTopic: EscapeMarkdown(p.TitleTopic)}
}

// markdownPunct is the CommonMark set of backslash-escapable characters.
const markdownPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// EscapeMarkdown backslash-escapes every ASCII punctuation character so
// that a markdown parser reads s back literally.
func EscapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownPunct, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Default returns the embedded table.
func Default() (*Table, error) {
	return parse(defaultTable)
}

func LoadFrom(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse templates file: %w", err)
	}
	if len(t.Sets) == 0 {
		return nil, errors.New("templates file defines no sets")
	}
	for name, set := range t.Sets {
		if err := set.validate(); err != nil {
			return nil, fmt.Errorf("template set %q: %w", name, err)
		}
	}
	return &t, nil
}

// Set returns the named set, or the table default when name is empty.
func (t *Table) Set(name string) (*Set, error) {
	if name == "" {
		name = t.DefaultSet
	}
	set, ok := t.Sets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownSet, name, t.Names())
	}
	return &set, nil
}

func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Sets))
	for name := range t.Sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validate renders every template once so that rendering at plan time
// cannot fail, and rejects duplicate headings.
func (s Set) validate() error {
	if len(s.Sections) == 0 {
		return errors.New("no sections")
	}

	sample := NewParams("sample topic")
	seen := make(map[string]bool, len(s.Sections))
	for i, section := range s.Sections {
		heading, err := Render(section.Heading, sample)
		if err != nil {
			return fmt.Errorf("section %d heading: %w", i+1, err)
		}
		if heading == "" {
			return fmt.Errorf("section %d has an empty heading", i+1)
		}
		if seen[heading] {
			return fmt.Errorf("duplicate heading %q", section.Heading)
		}
		seen[heading] = true

		if _, err := Render(section.Body, sample); err != nil {
			return fmt.Errorf("section %d body: %w", i+1, err)
		}
		if _, err := Render(section.Notes, sample); err != nil {
			return fmt.Errorf("section %d notes: %w", i+1, err)
		}
	}

	for i, line := range s.Conclusion.Lines {
		if _, err := Render(line, sample); err != nil {
			return fmt.Errorf("conclusion line %d: %w", i+1, err)
		}
	}
	for _, tmpl := range []string{s.TitleNotes, s.Conclusion.Heading, s.Conclusion.Notes} {
		if _, err := Render(tmpl, sample); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	return nil
}

func Render(tmpl string, params Params) (string, error) {
	if tmpl == "" {
		return "", nil
	}

	t, err := template.New("slide").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}
