package extract

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// objectLiteral matches assignments like `window.config = {...};` whose
// right-hand side may be plain JSON
var objectLiteral = regexp.MustCompile(`(?:window\.|var\s+)?[a-zA-Z_$][a-zA-Z0-9_$]*\s*=\s*({[^;]+});`)

// Script searches inline scripts, both as text and as embedded JSON objects
type Script struct{}

func (Script) Name() string { return "script" }

func (Script) Apply(doc *goquery.Document, info *ContactInfo) {
	doc.Find("script").EachWithBreak(func(i int, script *goquery.Selection) bool {
		body := strings.TrimSpace(script.Text())
		if body == "" {
			return true
		}

		info.scanText(body)
		if info.Complete() {
			return false
		}

		for _, m := range objectLiteral.FindAllStringSubmatch(body, -1) {
			var data any
			if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
				continue
			}
			walkJSON(data, info)
			if info.Complete() {
				return false
			}
		}
		return true
	})
}

// walkJSON visits every object in data and offers string values under
// email-like and phone-like keys. Keys are visited in sorted order.
func walkJSON(data any, info *ContactInfo) {
	stack := []any{data}

	for len(stack) > 0 && !info.Complete() {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := node.(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for key := range v {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			for _, key := range keys {
				s, ok := v[key].(string)
				if !ok {
					continue
				}
				lower := strings.ToLower(key)
				if strings.Contains(lower, "mail") {
					info.OfferEmail(s)
				}
				if strings.Contains(lower, "phone") || strings.Contains(lower, "tel") {
					info.OfferPhone(s)
				}
			}
			// nested values pushed in reverse so they pop in key order
			for i := len(keys) - 1; i >= 0; i-- {
				switch v[keys[i]].(type) {
				case map[string]any, []any:
					stack = append(stack, v[keys[i]])
				}
			}
		case []any:
			for i := len(v) - 1; i >= 0; i-- {
				stack = append(stack, v[i])
			}
		}
	}
}
