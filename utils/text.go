package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CleanText collapses runs of whitespace into single spaces
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// VisibleText returns the text under sel that a reader would see: script,
// style, noscript and template contents are skipped.
func VisibleText(sel *goquery.Selection) string {
	var b strings.Builder

	stack := make([]*html.Node, 0, 64)
	for i := len(sel.Nodes) - 1; i >= 0; i-- {
		stack = append(stack, sel.Nodes[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			continue
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				continue
			}
		}

		// push children in reverse so they pop in document order
		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}

	return CleanText(b.String())
}
