package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"contactscraper/fetcher"
)

// PageFetcher fetches and parses a page
type PageFetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, *fetcher.Page, error)
}

// PageFinder proposes the contact pages of a site
type PageFinder interface {
	Discover(ctx context.Context, doc *goquery.Document, baseURL string) []string
}

// Extractor visits a site's homepage and contact pages until both an email
// and a phone number are known
type Extractor struct {
	fetcher  PageFetcher
	finder   PageFinder
	registry *Registry
	log      logrus.FieldLogger
}

// New creates an Extractor. A nil registry means NewDefaultRegistry.
func New(pages PageFetcher, finder PageFinder, registry *Registry, log logrus.FieldLogger) *Extractor {
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	return &Extractor{
		fetcher:  pages,
		finder:   finder,
		registry: registry,
		log:      log,
	}
}

// Extract returns whatever contact details siteURL yields. A homepage that
// cannot be fetched yields a record carrying only the website. Contact pages
// are only discovered when the homepage alone is not enough.
func (e *Extractor) Extract(ctx context.Context, siteURL string) ContactInfo {
	info := ContactInfo{Website: siteURL}
	log := e.log.WithField("website", siteURL)

	home, page, err := e.fetcher.Document(ctx, siteURL)
	if err != nil {
		log.WithError(err).Warn("homepage fetch failed")
		return info
	}

	ApplySchema(home, &info)

	visited := map[string]bool{siteURL: true, page.FinalURL: true}
	e.scanPage(ctx, log, siteURL, home, &info)
	if info.Complete() {
		return info
	}

	for _, pageURL := range e.finder.Discover(ctx, home, page.FinalURL) {
		if visited[pageURL] {
			continue
		}
		visited[pageURL] = true

		if ctx.Err() != nil {
			break
		}

		e.scanPage(ctx, log, pageURL, nil, &info)
		if info.Complete() {
			break
		}
	}

	log.WithFields(logrus.Fields{
		"email": info.Email != "",
		"phone": info.Phone != "",
	}).Debug("extraction finished")
	return info
}

// scanPage runs the strategies on one page and its frames. Any failure,
// panics included, only costs this page.
func (e *Extractor) scanPage(ctx context.Context, log logrus.FieldLogger, pageURL string, doc *goquery.Document, info *ContactInfo) {
	log = log.WithField("page", pageURL)
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprint(r)).Error("page extraction panicked")
		}
	}()

	if doc == nil {
		var err error
		doc, _, err = e.fetcher.Document(ctx, pageURL)
		if err != nil {
			log.WithError(err).Debug("contact page fetch failed")
			return
		}
	}

	e.registry.Apply(doc, info)
	if info.Complete() {
		return
	}

	for _, frameURL := range frameSources(doc) {
		if ctx.Err() != nil {
			return
		}
		frame, _, err := e.fetcher.Document(ctx, frameURL)
		if err != nil {
			log.WithError(err).WithField("frame", frameURL).Debug("frame fetch failed")
			continue
		}
		e.registry.Apply(frame, info)
		if info.Complete() {
			return
		}
	}
}

// frameSources lists the absolute http(s) sources of frames and iframes
func frameSources(doc *goquery.Document) []string {
	var sources []string
	doc.Find("frame[src], iframe[src]").Each(func(i int, frame *goquery.Selection) {
		src := strings.TrimSpace(frame.AttrOr("src", ""))
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			sources = append(sources, src)
		}
	})
	return sources
}
