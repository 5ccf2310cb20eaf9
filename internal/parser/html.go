package parser

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// HTMLExtractor isolates the main content with readability and linearizes
// it. Pages readability cannot make sense of are linearized whole, minus
// navigation chrome.
type HTMLExtractor struct {
	// PageURL resolves relative links during readability scoring. Optional.
	PageURL *url.URL
}

func (p *HTMLExtractor) Extract(r io.Reader, filename string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	pageURL := p.PageURL
	if pageURL == nil {
		pageURL = &url.URL{Scheme: "file", Path: "/" + filename}
	}

	rp := readability.NewParser()
	article, err := rp.Parse(bytes.NewReader(raw), pageURL)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
		if err == nil {
			var out textBuilder
			if title := collapse(article.Title); title != "" {
				out.block(title)
			}
			linearize(&out, doc.Selection)
			if strings.TrimSpace(out.String()) != "" {
				return out.String(), nil
			}
		}
	}
	return extractFallback(raw)
}

func extractFallback(raw []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, noscript, nav, footer, header, form, svg, template").Remove()

	var out textBuilder
	if title := collapse(doc.Find("title").First().Text()); title != "" {
		out.block(title)
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	linearize(&out, body)
	return out.String(), nil
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true,
	"footer": true, "head": true, "template": true, "svg": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"ul": true, "ol": true, "li": true, "table": true, "tr": true,
	"thead": true, "tbody": true, "tfoot": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "dl": true, "header": true, "aside": true,
}

func linearize(out *textBuilder, sel *goquery.Selection) {
	for _, n := range sel.Nodes {
		walkHTML(out, n, 0)
	}
}

func walkHTML(out *textBuilder, n *html.Node, level int) {
	switch n.Type {
	case html.TextNode:
		out.block(collapse(n.Data))
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkHTML(out, c, level)
		}
		return
	}

	tag := n.Data
	switch {
	case skipTags[tag]:
		return
	case headingLevel(tag) > 0:
		out.heading(textContent(n))
		return
	case tag == "ul" || tag == "ol":
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				writeHTMLItem(out, c, level)
			}
		}
		return
	case tag == "pre":
		out.block(textContent(n))
		return
	case tag == "tr":
		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				if t := collapse(textContent(c)); t != "" {
					cells = append(cells, t)
				}
			}
		}
		out.block(strings.Join(cells, ": "))
		return
	case tag == "br":
		return
	}

	if !hasBlockChild(n) {
		out.block(flowText(n))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(out, c, level)
	}
}

// writeHTMLItem emits li text outside nested lists as one bullet, then the
// nested lists one level deeper.
func writeHTMLItem(out *textBuilder, li *html.Node, level int) {
	var own strings.Builder
	var nested []*html.Node
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			nested = append(nested, c)
			continue
		}
		own.WriteString(textContent(c))
		own.WriteByte(' ')
	}
	out.item(level, own.String())
	for _, l := range nested {
		walkHTML(out, l, level+1)
	}
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && blockTags[c.Data] {
			return true
		}
	}
	return false
}

// flowText renders inline content the way a browser would: whitespace runs
// collapse and only <br> breaks a line.
func flowText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(strings.Map(func(r rune) rune {
				if unicode.IsSpace(r) {
					return ' '
				}
				return r
			}, n.Data))
		case n.Type == html.ElementNode && skipTags[n.Data]:
			return
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	var lines []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if l = collapse(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}
