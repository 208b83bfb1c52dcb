package content

import (
	"log/slog"

	"deckcraft/pkg/templates"
)

// Plan is the templated text for one generation run. Headings are unique and
// ordered; every heading has an entry in Bodies. Bodies and conclusion lines
// are markdown in which the topic is escaped.
type Plan struct {
	Topic      string
	TitleNotes string
	Headings   []string
	Bodies     map[string]string
	Notes      map[string]string
	Conclusion Conclusion
}

type Conclusion struct {
	Heading string
	Lines   []string
	Notes   string
}

type Planner struct {
	set *templates.Set
}

func NewPlanner(set *templates.Set) *Planner {
	return &Planner{set: set}
}

// Plan substitutes topic into the template set. It never fails: sets are
// validated when loaded, and a template that still fails to render is used
// verbatim.
func (p *Planner) Plan(topic string) Plan {
	params := templates.NewParams(topic)
	// Bodies and conclusion lines are markdown; headings and notes are not.
	md := templates.NewMarkdownParams(topic)
	sections := p.set.Sections

	plan := Plan{
		Topic:      topic,
		TitleNotes: render(p.set.TitleNotes, params),
		Headings:   make([]string, 0, len(sections)),
		Bodies:     make(map[string]string, len(sections)),
		Notes:      make(map[string]string, len(sections)),
	}

	for _, section := range sections {
		heading := render(section.Heading, params)
		if _, dup := plan.Bodies[heading]; dup {
			// Distinct templates can collide for odd topics; keep the first.
			slog.Warn("Skipping duplicate heading", "heading", heading)
			continue
		}
		plan.Headings = append(plan.Headings, heading)
		plan.Bodies[heading] = render(section.Body, md)
		plan.Notes[heading] = render(section.Notes, params)
	}

	heading := render(p.set.Conclusion.Heading, params)
	if heading == "" {
		heading = "Conclusion"
	}
	lines := make([]string, len(p.set.Conclusion.Lines))
	for i, line := range p.set.Conclusion.Lines {
		lines[i] = render(line, md)
	}
	plan.Conclusion = Conclusion{
		Heading: heading,
		Lines:   lines,
		Notes:   render(p.set.Conclusion.Notes, params),
	}

	return plan
}

func render(tmpl string, params templates.Params) string {
	out, err := templates.Render(tmpl, params)
	if err != nil {
		slog.Warn("Template render failed, using raw text", "template", tmpl, "error", err)
		return tmpl
	}
	return out
}
