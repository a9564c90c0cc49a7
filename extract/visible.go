package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"contactscraper/utils"
)

// builderContainers are the wrapper classes page builders put around
// contact widgets (Ultimate Addons, Elementor, WPBakery)
var builderContainers = []string{
	".uabb-info-list-item",
	".elementor-widget-container",
	".vc_column_text",
}

var sectionClass = regexp.MustCompile(`(?i)contact|footer|header|info|details`)

// attributes that commonly carry contact values on section elements
var contactAttrs = []string{"href", "data-email", "data-phone", "content"}

// Visible reads contact details from what a visitor sees on the page
type Visible struct{}

func (Visible) Name() string { return "visible" }

func (Visible) Apply(doc *goquery.Document, info *ContactInfo) {
	for _, selector := range builderContainers {
		done := false
		doc.Find(selector).EachWithBreak(func(i int, container *goquery.Selection) bool {
			scanBuilder(container, info)
			done = info.Complete()
			return !done
		})
		if done {
			return
		}
	}

	sectionsDone := false
	doc.Find("div, section").EachWithBreak(func(i int, section *goquery.Selection) bool {
		if !sectionClass.MatchString(section.AttrOr("class", "")) {
			return true
		}
		traverse(section.Nodes[0], info)
		sectionsDone = info.Complete()
		return !sectionsDone
	})
	if sectionsDone {
		return
	}

	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !hasPrefixFold(href, "tel:") {
			return true
		}
		return !info.OfferPhone(href[len("tel:"):])
	})

	if !info.Complete() {
		info.scanText(utils.VisibleText(doc.Selection))
	}
}

// scanBuilder checks mailto and tel links first, then the text of the
// container's paragraphs, spans and divs
func scanBuilder(container *goquery.Selection, info *ContactInfo) {
	container.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		switch {
		case hasPrefixFold(href, "mailto:"):
			info.OfferEmail(href)
		case hasPrefixFold(href, "tel:"):
			info.OfferPhone(href[len("tel:"):])
		}
	})

	container.Find("p, span, div").EachWithBreak(func(i int, elem *goquery.Selection) bool {
		info.scanText(elem.Text())
		return !info.Complete()
	})
}

// traverse walks the subtree under root depth first with an explicit stack,
// scanning contact attributes and text nodes. It stops as soon as info is complete.
func traverse(root *html.Node, info *ContactInfo) {
	stack := []*html.Node{root}

	for len(stack) > 0 && !info.Complete() {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				info.scanText(text)
			}
			continue
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				continue
			}
			for _, attr := range n.Attr {
				for _, name := range contactAttrs {
					if attr.Key == name && attr.Val != "" {
						info.scanText(attr.Val)
					}
				}
			}
		}

		for c := n.LastChild; c != nil; c = c.PrevSibling {
			if info.Complete() {
				return
			}
			stack = append(stack, c)
		}
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
