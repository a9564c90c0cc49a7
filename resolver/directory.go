package resolver

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"contactscraper/search"
	"contactscraper/utils"
)

// websiteLinkText matches the anchor text of a listing's outbound website
// link, most specific first
var websiteLinkText = []*regexp.Regexp{
	regexp.MustCompile(`(?i)website|official site|homepage|web page`),
	regexp.MustCompile(`(?i)visit.*site|view.*website`),
}

// searchDirectory looks for name's listing on directory through a site:
// search and reads the website link off the first listing that has one.
func (r *Resolver) searchDirectory(ctx context.Context, directory, name string) (string, error) {
	if r.fetcher == nil || r.cfg.DirectorySearchURL == "" {
		return "", nil
	}

	query := fmt.Sprintf("site:%s %s", directory, name)
	searchURL := fmt.Sprintf(r.cfg.DirectorySearchURL, url.QueryEscape(query))

	doc, page, err := r.fetcher.Document(ctx, searchURL)
	if err != nil {
		return "", err
	}

	seen := make(map[string]bool)
	for _, link := range search.Links(doc, "a[href]", page.FinalURL) {
		if seen[link] || !strings.Contains(link, directory) || !mentionsCompany(link, name) {
			continue
		}
		seen[link] = true

		site, err := r.websiteFromListing(ctx, link)
		if err != nil {
			r.log.WithError(err).WithField("listing", link).Debug("listing fetch failed")
			continue
		}
		if site != "" {
			return site, nil
		}
	}
	return "", nil
}

// websiteFromListing returns the first outbound website link on a directory
// listing page
func (r *Resolver) websiteFromListing(ctx context.Context, listingURL string) (string, error) {
	doc, page, err := r.fetcher.Document(ctx, listingURL)
	if err != nil {
		return "", err
	}

	for _, pattern := range websiteLinkText {
		if site := r.findWebsiteLink(doc, pattern, page.FinalURL); site != "" {
			return site, nil
		}
	}
	return "", nil
}

func (r *Resolver) findWebsiteLink(doc *goquery.Document, pattern *regexp.Regexp, pageURL string) string {
	var site string
	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		if !pattern.MatchString(strings.TrimSpace(a.Text())) {
			return true
		}
		href := utils.Absolute(pageURL, utils.UnwrapURL(a.AttrOr("href", "")))
		if utils.IsValidURL(href, r.cfg.Directories) {
			site = href
			return false
		}
		return true
	})
	return site
}

// mentionsCompany reports whether link contains name in one of the slug
// forms directories use for spaces
func mentionsCompany(link, name string) bool {
	link = strings.ToLower(link)
	if unescaped, err := url.PathUnescape(link); err == nil {
		link = unescaped
	}

	lower := strings.ToLower(name)
	for _, sep := range []string{" ", "-", "+", "_", ""} {
		if strings.Contains(link, strings.ReplaceAll(lower, " ", sep)) {
			return true
		}
	}
	return false
}
