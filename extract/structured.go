package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"contactscraper/patterns"
)

// Metadata runs the structured-data patterns over the raw markup, which
// covers JSON-LD, meta tags and data attributes in one pass
type Metadata struct{}

func (Metadata) Name() string { return "metadata" }

func (Metadata) Apply(doc *goquery.Document, info *ContactInfo) {
	raw, err := doc.Html()
	if err != nil {
		return
	}
	if email, ok := patterns.SchemaEmail(raw); ok {
		info.SetEmail(email)
	}
	if phone, ok := patterns.SchemaPhone(raw); ok {
		info.SetPhone(phone)
	}
}

// Microdata reads itemprop values inside schema.org Organization items
type Microdata struct{}

func (Microdata) Name() string { return "microdata" }

func (Microdata) Apply(doc *goquery.Document, info *ContactInfo) {
	doc.Find(`[itemtype*="schema.org/Organization"]`).EachWithBreak(func(i int, org *goquery.Selection) bool {
		if info.Email == "" {
			if value, ok := itemprop(org, "email"); ok {
				info.OfferEmail(value)
			}
		}
		if info.Phone == "" {
			if value, ok := itemprop(org, "telephone"); ok {
				info.OfferPhone(value)
			}
		}
		return !info.Complete()
	})
}

// itemprop returns the content attribute of the first element carrying prop,
// falling back to its text
func itemprop(scope *goquery.Selection, prop string) (string, bool) {
	elem := scope.Find(`[itemprop="` + prop + `"]`).First()
	if elem.Length() == 0 {
		return "", false
	}
	if content, ok := elem.Attr("content"); ok {
		return strings.TrimSpace(content), true
	}
	return strings.TrimSpace(elem.Text()), true
}

// ApplySchema reads JSON-LD blocks: contactPoint email and telephone first,
// then the top-level properties. Arrays and @graph are followed one level.
func ApplySchema(doc *goquery.Document, info *ContactInfo) {
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, script *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
			return true
		}
		for _, node := range schemaNodes(data) {
			for _, point := range contactPoints(node["contactPoint"]) {
				offerString(point["email"], info.OfferEmail)
				offerString(point["telephone"], info.OfferPhone)
			}
			offerString(node["email"], info.OfferEmail)
			offerString(node["telephone"], info.OfferPhone)
		}
		return !info.Complete()
	})
}

func schemaNodes(data any) []map[string]any {
	var nodes []map[string]any
	switch v := data.(type) {
	case map[string]any:
		nodes = append(nodes, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if node, ok := item.(map[string]any); ok {
					nodes = append(nodes, node)
				}
			}
		}
	case []any:
		for _, item := range v {
			if node, ok := item.(map[string]any); ok {
				nodes = append(nodes, node)
			}
		}
	}
	return nodes
}

func contactPoints(v any) []map[string]any {
	switch point := v.(type) {
	case map[string]any:
		return []map[string]any{point}
	case []any:
		var out []map[string]any
		for _, item := range point {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func offerString(v any, offer func(string) bool) {
	if s, ok := v.(string); ok {
		offer(s)
	}
}
