// Package search builds search engine queries and reads organic results from
// rendered result pages.
package search

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"contactscraper/config"
	"contactscraper/utils"
)

// Result is one organic search result
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// BuildURL fills the engine template with the escaped query. Google queries
// also carry the region parameters.
func BuildURL(engine config.SearchEngine, query, region string) string {
	searchURL := fmt.Sprintf(engine.URLTemplate, url.QueryEscape(query))

	regionConfig, ok := config.RegionConfigs[region]
	if !ok {
		return searchURL
	}
	parsed, err := url.Parse(searchURL)
	if err != nil || !strings.Contains(parsed.Hostname(), "google.") {
		return searchURL
	}
	params := parsed.Query()
	regionConfig.Apply(params)
	parsed.RawQuery = params.Encode()
	return parsed.String()
}

// ExtractResults reads the first maxResults entries matching selector. Each
// entry contributes its first anchor, unwrapped from engine redirects and made
// absolute against pageURL; entries without an anchor still count.
func ExtractResults(doc *goquery.Document, selector, pageURL string, maxResults int) []Result {
	var results []Result

	doc.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxResults {
			return false
		}

		href, exists := sel.Find("a[href]").First().Attr("href")
		if !exists {
			return true
		}

		title := sel.Find("h3").First().Text()
		if title == "" {
			title = sel.Find("h2").First().Text()
		}

		results = append(results, Result{
			Title: strings.TrimSpace(title),
			URL:   utils.Absolute(pageURL, utils.UnwrapURL(href)),
		})
		return true
	})

	return results
}

// Links returns every anchor href under selector, unwrapped and absolute
func Links(doc *goquery.Document, selector, pageURL string) []string {
	var links []string
	doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			links = append(links, utils.Absolute(pageURL, utils.UnwrapURL(href)))
		}
	})
	return links
}
