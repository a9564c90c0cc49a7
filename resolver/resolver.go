// Package resolver finds a company's official website. Search engines are
// queried through a rendering browser first; business directory listings are
// the fallback.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"contactscraper/cache"
	"contactscraper/config"
	"contactscraper/fetcher"
	"contactscraper/search"
	"contactscraper/utils"
)

const domainCachePrefix = "domain:"

// errNoSourceAnswered marks a lookup where every engine and directory failed.
// Such a miss says nothing about the company and is never cached.
var errNoSourceAnswered = errors.New("resolver: no source answered")

// Renderer returns the rendered HTML of a page once selector is visible
type Renderer interface {
	Render(ctx context.Context, url, selector string) (string, error)
}

// PageFetcher fetches and parses a page without a browser
type PageFetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, *fetcher.Page, error)
}

// Resolver maps company names to website URLs. It is safe for concurrent use.
type Resolver struct {
	cfg         config.SearchConfig
	renderer    Renderer
	fetcher     PageFetcher
	store       cache.Store
	ttl         time.Duration
	negativeTTL time.Duration
	excluded    map[string]bool
	log         logrus.FieldLogger
}

// New creates a Resolver. store may be nil to disable caching.
func New(cfg config.Config, renderer Renderer, pages PageFetcher, store cache.Store, log logrus.FieldLogger) *Resolver {
	excluded := make(map[string]bool, len(cfg.Search.ExcludedDomains))
	for _, domain := range cfg.Search.ExcludedDomains {
		excluded[strings.ToLower(domain)] = true
	}

	return &Resolver{
		cfg:         cfg.Search,
		renderer:    renderer,
		fetcher:     pages,
		store:       store,
		ttl:         cfg.Cache.TTL,
		negativeTTL: cfg.Cache.NegativeTTL,
		excluded:    excluded,
		log:         log,
	}
}

// Resolve returns the website of companyName, or "" when no source produced
// one. Failures of individual engines and directories are logged and skipped;
// only context cancellation is returned as an error. A miss is cached only
// when at least one source actually answered.
func (r *Resolver) Resolve(ctx context.Context, companyName string) (string, error) {
	name := strings.Join(strings.Fields(companyName), " ")
	if name == "" {
		return "", nil
	}

	key := domainCachePrefix + cleanName(name)
	site, err := cache.MemoizeTTL(ctx, r.store, key, r.ttlFor, func() (string, error) {
		return r.resolve(ctx, name)
	})
	if errors.Is(err, errNoSourceAnswered) {
		return "", nil
	}
	return site, err
}

func (r *Resolver) ttlFor(site string) time.Duration {
	if site == "" {
		return r.negativeTTL
	}
	return r.ttl
}

func (r *Resolver) resolve(ctx context.Context, name string) (string, error) {
	log := r.log.WithField("company", name)
	answered := false

	queries := []string{name}
	if r.cfg.FallbackSuffix != "" {
		queries = append(queries, name+" "+r.cfg.FallbackSuffix)
	}

	for _, query := range queries {
		for _, engine := range r.cfg.Engines {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			site, err := r.searchEngine(ctx, engine, query, name)
			if err != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"engine": engine.Name,
					"query":  query,
				}).Warn("search engine lookup failed")
				continue
			}
			answered = true
			if site != "" {
				log.WithFields(logrus.Fields{"engine": engine.Name, "website": site}).Info("website resolved")
				return site, nil
			}
		}
	}

	for _, directory := range r.cfg.Directories {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		site, err := r.searchDirectory(ctx, directory, name)
		if err != nil {
			log.WithError(err).WithField("directory", directory).Warn("directory lookup failed")
			continue
		}
		answered = true
		if site != "" {
			log.WithFields(logrus.Fields{"directory": directory, "website": site}).Info("website resolved from directory")
			return site, nil
		}
	}

	if !answered {
		log.Warn("every website source failed")
		return "", errNoSourceAnswered
	}
	log.Info("no website found")
	return "", nil
}

// searchEngine renders one result page and returns the first result that
// belongs to name
func (r *Resolver) searchEngine(ctx context.Context, engine config.SearchEngine, query, name string) (string, error) {
	searchURL := search.BuildURL(engine, query, r.cfg.Region)

	html, err := r.renderer.Render(ctx, searchURL, engine.ResultSelector)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", searchURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse %s results: %w", engine.Name, err)
	}

	for _, result := range search.ExtractResults(doc, engine.ResultSelector, searchURL, r.cfg.MaxResults) {
		link := r.followInterstitial(ctx, result.URL)
		if r.IsValidCompanySite(link, name) {
			return link, nil
		}
	}
	return "", nil
}

// followInterstitial resolves Bing click-tracking links that could not be
// decoded in place by reading the redirect script of the interstitial page.
func (r *Resolver) followInterstitial(ctx context.Context, link string) string {
	if !strings.Contains(link, "bing.com/ck/a") || r.fetcher == nil {
		return link
	}

	_, page, err := r.fetcher.Document(ctx, link)
	if err != nil {
		r.log.WithError(err).WithField("url", link).Debug("interstitial fetch failed")
		return link
	}
	if target, ok := utils.ExtractRedirectURL(string(page.Body)); ok {
		return target
	}
	return link
}
