package parser

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor walks the goldmark AST so headings and lists survive
// linearization even when the source uses setext headings or "+" markers.
type MarkdownExtractor struct{}

func (p *MarkdownExtractor) Extract(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out textBuilder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		writeMarkdownBlock(&out, n, src, 0)
	}
	return out.String(), nil
}

func writeMarkdownBlock(out *textBuilder, n ast.Node, src []byte, level int) {
	switch node := n.(type) {
	case *ast.Heading:
		out.heading(inlineText(node, src))
	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			writeListItem(out, item, src, level)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		out.block(blockLines(n, src))
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			writeMarkdownBlock(out, c, src, level)
		}
	case *ast.ThematicBreak, *ast.HTMLBlock:
	default:
		out.block(inlineText(n, src))
	}
}

// writeListItem emits the item's own text as one bullet, then any nested
// lists one level deeper.
func writeListItem(out *textBuilder, item ast.Node, src []byte, level int) {
	var own []string
	var nested []ast.Node
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*ast.List); ok {
			nested = append(nested, c)
			continue
		}
		own = append(own, inlineText(c, src))
	}
	out.item(level, strings.Join(own, " "))
	for _, l := range nested {
		writeMarkdownBlock(out, l, src, level+1)
	}
}

// inlineText concatenates the text segments below n. Soft breaks become
// spaces and hard breaks become newlines.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.HardLineBreak() {
					buf.WriteByte('\n')
				} else if t.SoftLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(t.Value)
			case *ast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

func blockLines(n ast.Node, src []byte) string {
	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}
