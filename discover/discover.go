// Package discover finds the pages of a website most likely to carry contact
// details.
package discover

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"contactscraper/config"
	"contactscraper/fetcher"
	"contactscraper/utils"
)

var (
	navClass     = regexp.MustCompile(`(?i)(?:main|primary|global)-nav`)
	metaName     = regexp.MustCompile(`(?i)contact|email`)
	sitemapHref  = regexp.MustCompile(`(?i)sitemap`)
	urlLikeValue = []string{"http://", "https://", "/"}
)

// PageFetcher fetches and parses a page
type PageFetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, *fetcher.Page, error)
}

// Discoverer ranks candidate contact pages of a site
type Discoverer struct {
	cfg     config.DiscoverConfig
	matcher *config.Matcher
	fetcher PageFetcher
	log     logrus.FieldLogger
}

// New compiles the configured vocabulary. It fails when a pattern does not compile.
func New(cfg config.DiscoverConfig, pages PageFetcher, log logrus.FieldLogger) (*Discoverer, error) {
	matcher, err := cfg.Vocabulary.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile contact vocabulary: %w", err)
	}
	return &Discoverer{cfg: cfg, matcher: matcher, fetcher: pages, log: log}, nil
}

// Discover returns up to TopN contact page URLs for the site whose homepage
// is doc, best first. The homepage itself is a candidate when it already
// looks like a contact page.
func (d *Discoverer) Discover(ctx context.Context, doc *goquery.Document, baseURL string) []string {
	found := newCandidates()

	if Relevance(doc) > d.cfg.HomepageThreshold {
		found.add(baseURL)
	}

	d.scanNavigation(doc, baseURL, found)
	d.scanStructured(doc, baseURL, found)
	d.scanSitemaps(ctx, doc, baseURL, found)
	d.probe(ctx, baseURL, found)

	top := found.ranked(d.cfg.TopN)
	d.log.WithFields(logrus.Fields{
		"site":       baseURL,
		"candidates": len(found.urls),
		"selected":   top,
	}).Debug("contact pages discovered")
	return top
}

// scanNavigation collects contact links from headers, navs, footers and
// main navigation blocks
func (d *Discoverer) scanNavigation(doc *goquery.Document, baseURL string, found *candidates) {
	doc.Find("header, nav, footer").Each(func(i int, area *goquery.Selection) {
		d.collectLinks(area, baseURL, found)
	})
	doc.Find("[class]").Each(func(i int, area *goquery.Selection) {
		if navClass.MatchString(area.AttrOr("class", "")) {
			d.collectLinks(area, baseURL, found)
		}
	})
}

func (d *Discoverer) collectLinks(area *goquery.Selection, baseURL string, found *candidates) {
	area.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		full := utils.Absolute(baseURL, a.AttrOr("href", ""))
		if d.isContactLink(full, a.Text()) {
			found.add(d.keep(baseURL, full))
		}
	})
}

// scanStructured reads contact URLs from JSON-LD and meta tags
func (d *Discoverer) scanStructured(doc *goquery.Document, baseURL string, found *candidates) {
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, script *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
			return
		}
		for _, link := range d.jsonLDContactURLs(data) {
			found.add(d.keep(baseURL, utils.Absolute(baseURL, link)))
		}
	})

	doc.Find("meta[name]").Each(func(i int, meta *goquery.Selection) {
		if !metaName.MatchString(meta.AttrOr("name", "")) {
			return
		}
		content := strings.TrimSpace(meta.AttrOr("content", ""))
		for _, prefix := range urlLikeValue {
			if strings.HasPrefix(content, prefix) {
				found.add(d.keep(baseURL, utils.Absolute(baseURL, content)))
				return
			}
		}
	})
}

// jsonLDContactURLs returns contactPoint URLs and contact-like url values of
// a decoded JSON-LD block. Top-level arrays and @graph are followed one level.
func (d *Discoverer) jsonLDContactURLs(data any) []string {
	var out []string

	var visit func(v any, depth int)
	visit = func(v any, depth int) {
		switch node := v.(type) {
		case []any:
			if depth > 1 {
				return
			}
			for _, item := range node {
				visit(item, depth+1)
			}
		case map[string]any:
			if graph, ok := node["@graph"].([]any); ok && depth == 0 {
				visit(graph, depth+1)
			}
			out = append(out, contactPointURLs(node["contactPoint"])...)
			if link, ok := node["url"].(string); ok && d.isContactLink(link, "") {
				out = append(out, link)
			}
		}
	}
	visit(data, 0)

	return out
}

func contactPointURLs(v any) []string {
	var out []string
	switch point := v.(type) {
	case map[string]any:
		if link, ok := point["url"].(string); ok && link != "" {
			out = append(out, link)
		}
	case []any:
		for _, item := range point {
			out = append(out, contactPointURLs(item)...)
		}
	}
	return out
}

// scanSitemaps follows sitemap links from the homepage. XML sitemaps parse
// as HTML with unknown <url> and <loc> elements, so one parser serves both.
func (d *Discoverer) scanSitemaps(ctx context.Context, doc *goquery.Document, baseURL string, found *candidates) {
	var sitemaps []string
	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		if len(sitemaps) >= d.cfg.MaxSitemaps {
			return false
		}
		href := a.AttrOr("href", "")
		if sitemapHref.MatchString(href) {
			link := utils.Absolute(baseURL, href)
			if !slices.Contains(sitemaps, link) {
				sitemaps = append(sitemaps, link)
			}
		}
		return true
	})

	for _, sitemapURL := range sitemaps {
		if ctx.Err() != nil {
			return
		}
		if !utils.SameSite(baseURL, sitemapURL) {
			continue
		}

		sitemap, _, err := d.fetcher.Document(ctx, sitemapURL)
		if err != nil {
			d.log.WithError(err).WithField("url", sitemapURL).Debug("sitemap fetch failed")
			continue
		}

		sitemap.Find("loc").Each(func(i int, loc *goquery.Selection) {
			link := strings.TrimSpace(loc.Text())
			if d.isContactLink(link, "") {
				found.add(d.keep(baseURL, link))
			}
		})
		d.collectLinks(sitemap.Selection, sitemapURL, found)
	}
}

// probe tries the well-known contact paths. A probed page only counts when it
// reads like a contact page, which filters soft 404s.
func (d *Discoverer) probe(ctx context.Context, baseURL string, found *candidates) {
	for _, path := range d.cfg.CommonPaths {
		if ctx.Err() != nil {
			return
		}

		candidate := utils.Absolute(baseURL, path)
		if found.has(candidate) {
			continue
		}

		page, _, err := d.fetcher.Document(ctx, candidate)
		if err != nil {
			d.log.WithError(err).WithField("url", candidate).Debug("probe missed")
			continue
		}
		if Relevance(page) > d.cfg.ProbeThreshold {
			found.add(candidate)
		}
	}
}

func (d *Discoverer) isContactLink(rawURL, text string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return d.matcher.MatchURL(parsed) || d.matcher.MatchText(text)
}

// keep returns link when it is a well-formed URL on the same site as baseURL,
// and "" otherwise
func (d *Discoverer) keep(baseURL, link string) string {
	if !utils.IsValidURL(link, nil) || !utils.SameSite(baseURL, link) {
		return ""
	}
	return link
}

// candidates is an insertion-ordered set of URLs
type candidates struct {
	urls []string
	seen map[string]bool
}

func newCandidates() *candidates {
	return &candidates{seen: make(map[string]bool)}
}

func (c *candidates) add(link string) {
	if link == "" || c.seen[link] {
		return
	}
	c.seen[link] = true
	c.urls = append(c.urls, link)
}

func (c *candidates) has(link string) bool {
	return c.seen[link]
}

// Candidate is a contact page URL with its ScoreURL rating
type Candidate struct {
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Rank scores links and orders them best first, keeping input order among equals
func Rank(links []string) []Candidate {
	ranked := make([]Candidate, len(links))
	for i, link := range links {
		ranked[i] = Candidate{URL: link, Score: ScoreURL(link)}
	}
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked
}

func (c *candidates) ranked(n int) []string {
	ranked := Rank(c.urls)
	out := make([]string, 0, min(n, len(ranked)))
	for _, candidate := range ranked[:min(n, len(ranked))] {
		out = append(out, candidate.URL)
	}
	return out
}
