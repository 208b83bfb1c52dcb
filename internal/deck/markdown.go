package deck

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var markdown = goldmark.New()

// parseMarkdown turns a body template's markdown into slide paragraphs.
// Block structure is flattened: list items become bullets, headings become
// bold paragraphs and everything else is plain text.
func parseMarkdown(src string) []Paragraph {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var paras []Paragraph
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		paras = appendBlock(paras, n, source, false)
	}
	return paras
}

func appendBlock(paras []Paragraph, n ast.Node, source []byte, bullet bool) []Paragraph {
	switch n := n.(type) {
	case *ast.List:
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				paras = appendBlock(paras, c, source, true)
			}
		}
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			paras = appendBlock(paras, c, source, bullet)
		}
	case *ast.Heading:
		paras = appendParagraph(paras, inlineRuns(n, source, true, false), bullet)
	case *ast.Paragraph, *ast.TextBlock:
		paras = appendParagraph(paras, inlineRuns(n, source, false, false), bullet)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(source)), "\r\n")
			paras = appendParagraph(paras, []Run{{Text: line}}, bullet)
		}
	}
	return paras
}

func appendParagraph(paras []Paragraph, runs []Run, bullet bool) []Paragraph {
	if len(runs) == 0 {
		return paras
	}
	last := &runs[len(runs)-1]
	last.Text = strings.TrimRight(last.Text, " ")
	if strings.TrimSpace(Paragraph{Runs: runs}.Text()) == "" {
		return paras
	}
	return append(paras, Paragraph{Runs: runs, Bullet: bullet})
}

func inlineRuns(parent ast.Node, source []byte, bold, italic bool) []Run {
	var runs []Run
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			// Text segments keep backslash escapes; the renderer is expected
			// to drop them.
			value := util.UnescapePunctuations(c.Segment.Value(source))
			runs = appendRun(runs, Run{Text: string(value), Bold: bold, Italic: italic})
			if c.SoftLineBreak() || c.HardLineBreak() {
				runs = appendRun(runs, Run{Text: " ", Bold: bold, Italic: italic})
			}
		case *ast.String:
			runs = appendRun(runs, Run{Text: string(c.Value), Bold: bold, Italic: italic})
		case *ast.Emphasis:
			for _, r := range inlineRuns(c, source, bold || c.Level >= 2, italic || c.Level == 1) {
				runs = appendRun(runs, r)
			}
		case *ast.AutoLink:
			runs = appendRun(runs, Run{Text: string(c.Label(source)), Bold: bold, Italic: italic})
		default:
			for _, r := range inlineRuns(c, source, bold, italic) {
				runs = appendRun(runs, r)
			}
		}
	}
	return runs
}

func appendRun(runs []Run, r Run) []Run {
	if r.Text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Bold == r.Bold && runs[n-1].Italic == r.Italic {
		runs[n-1].Text += r.Text
		return runs
	}
	return append(runs, r)
}
