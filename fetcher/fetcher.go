// Package fetcher is the single point of plain HTTP I/O. It retries within a
// bounded attempt budget, follows redirects itself and rotates user agents.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"contactscraper/cache"
	"contactscraper/config"
)

const pageCachePrefix = "page:"

// Fetcher issues GET requests over one shared client. It is safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	cfg     config.FetchConfig
	limiter *rate.Limiter
	store   cache.Store
	ttl     time.Duration
	log     logrus.FieldLogger
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithCache caches successful pages in store for ttl
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.store = store
		f.ttl = ttl
	}
}

// WithTransport replaces the client's transport
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.client.Transport = rt
	}
}

// New creates a Fetcher
func New(cfg config.FetchConfig, log logrus.FieldLogger, opts ...Option) *Fetcher {
	// cookiejar.New never returns an error
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	f := &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		cfg: cfg,
		log: log,
	}
	if cfg.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the page at rawURL. Any error means "no result for this URL";
// callers are not expected to retry.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if f.store != nil {
		var cached Page
		if err := f.store.Get(ctx, pageCachePrefix+rawURL, &cached); err == nil {
			return &cached, nil
		}
	}

	page, err := f.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if f.store != nil {
		if err := f.store.Set(ctx, pageCachePrefix+rawURL, page, f.ttl); err != nil {
			f.log.WithError(err).WithField("url", rawURL).Debug("failed to cache page")
		}
	}
	return page, nil
}

// Document fetches rawURL and parses it
func (f *Fetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, *Page, error) {
	page, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := page.Document()
	if err != nil {
		return nil, nil, err
	}
	return doc, page, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*Page, error) {
	current := rawURL
	visited := map[string]bool{current: true}
	redirects := 0
	log := f.log.WithField("url", rawURL)

	for attempt := 0; attempt < f.cfg.MaxRetries; {
		if err := f.pause(ctx); err != nil {
			return nil, err
		}

		resp, err := f.do(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			switch {
			case isTimeout(err):
				log.WithField("attempt", attempt).Debug("request timed out, retrying")
				if err := sleep(ctx, f.backoff(attempt)); err != nil {
					return nil, err
				}
				attempt++
			case isConnectionError(err):
				log.WithField("attempt", attempt).Debug("connection failed, retrying")
				if err := sleep(ctx, 2*f.backoff(attempt)); err != nil {
					return nil, err
				}
				attempt++
			default:
				log.WithError(err).Warn("request failed")
				return nil, fmt.Errorf("request to %s failed: %w", current, err)
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := readBody(resp, f.cfg.MaxBodyBytes)
			resp.Body.Close()
			if err != nil {
				return nil, err
			}
			return &Page{
				URL:        rawURL,
				FinalURL:   current,
				StatusCode: resp.StatusCode,
				Header:     resp.Header,
				Body:       body,
			}, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			drain(resp)
			log.WithField("attempt", attempt).Debug("rate limited, backing off")
			if err := sleep(ctx, f.backoff(attempt)); err != nil {
				return nil, err
			}
			attempt++

		case isRedirect(resp.StatusCode) && resp.Header.Get("Location") != "":
			location := resp.Header.Get("Location")
			drain(resp)

			next, err := resolveReference(current, location)
			if err != nil {
				return nil, fmt.Errorf("bad redirect from %s: %w", current, err)
			}
			redirects++
			if redirects > f.cfg.MaxRedirects {
				return nil, ErrTooManyRedirects
			}
			if visited[next] {
				return nil, ErrRedirectLoop
			}
			visited[next] = true
			current = next

		default:
			drain(resp)
			return nil, &StatusError{URL: current, StatusCode: resp.StatusCode}
		}
	}

	log.Debug("retries exhausted")
	return nil, ErrRetriesExhausted
}

func (f *Fetcher) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	req.Header.Set("DNT", "1")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "no-cache")

	return f.client.Do(req)
}

func (f *Fetcher) userAgent() string {
	return f.cfg.UserAgents[rand.IntN(len(f.cfg.UserAgents))]
}

// pause applies the global rate limit and the per-request politeness delay
func (f *Fetcher) pause(ctx context.Context) error {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	delay := f.cfg.BaseDelay + f.cfg.JitterMin
	if spread := f.cfg.JitterMax - f.cfg.JitterMin; spread > 0 {
		delay += rand.N(spread)
	}
	return sleep(ctx, delay)
}

func (f *Fetcher) backoff(attempt int) time.Duration {
	return f.cfg.BaseDelay * time.Duration(attempt+1)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnectionError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return !dnsErr.IsNotFound
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func resolveReference(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
