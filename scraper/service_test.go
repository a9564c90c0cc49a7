package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactscraper/config"
	"contactscraper/discover"
	"contactscraper/extract"
	"contactscraper/fetcher"
	"contactscraper/resolver"
)

type fakeResolver struct {
	sites map[string]string
	err   error
}

func (f fakeResolver) Resolve(_ context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if name == "Panic Co" {
		panic("resolver exploded")
	}
	return f.sites[name], nil
}

type fakeExtractor struct {
	calls atomic.Int32
	info  map[string]extract.ContactInfo
}

func (f *fakeExtractor) Extract(_ context.Context, siteURL string) extract.ContactInfo {
	f.calls.Add(1)
	if info, ok := f.info[siteURL]; ok {
		return info
	}
	return extract.ContactInfo{Website: siteURL}
}

func newService(r Resolver, e Extractor, workers int) *Service {
	logger, _ := test.NewNullLogger()
	return NewService(r, e, workers, logger)
}

func TestProcessNoWebsite(t *testing.T) {
	extractor := &fakeExtractor{}
	result := newService(fakeResolver{}, extractor, 1).Process(context.Background(), "Nowhere Ltd")

	assert.Equal(t, CompanyResult{CompanyName: "Nowhere Ltd", Status: StatusNoWebsite}, result)
	assert.Zero(t, extractor.calls.Load())
}

func TestProcessSuccess(t *testing.T) {
	extractor := &fakeExtractor{info: map[string]extract.ContactInfo{
		"https://acme.com/": {Website: "https://acme.com/", Email: "jane@acme.com", Phone: "+15552345678"},
	}}
	svc := newService(fakeResolver{sites: map[string]string{"Acme Corp": "https://acme.com/"}}, extractor, 1)

	result := svc.Process(context.Background(), "  Acme \n Corp ")
	assert.Equal(t, CompanyResult{
		CompanyName: "Acme Corp",
		Website:     "https://acme.com/",
		Email:       "jane@acme.com",
		Phone:       "+15552345678",
		Status:      StatusSuccess,
	}, result)
}

func TestProcessPartialContactIsSuccess(t *testing.T) {
	svc := newService(fakeResolver{sites: map[string]string{"Acme": "https://acme.com/"}}, &fakeExtractor{}, 1)

	result := svc.Process(context.Background(), "Acme")
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "https://acme.com/", result.Website)
	assert.Empty(t, result.Email)
	assert.Empty(t, result.Phone)
}

func TestProcessResolverError(t *testing.T) {
	result := newService(fakeResolver{err: errors.New("boom")}, &fakeExtractor{}, 1).Process(context.Background(), "Acme")
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "Acme", result.CompanyName)
}

func TestProcessRecoversPanic(t *testing.T) {
	svc := newService(fakeResolver{}, &fakeExtractor{}, 1)

	var result CompanyResult
	require.NotPanics(t, func() {
		result = svc.Process(context.Background(), "Panic Co")
	})
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "Panic Co", result.CompanyName)
}

func TestProcessBytes(t *testing.T) {
	svc := newService(fakeResolver{sites: map[string]string{"Café Ltd": "https://cafe.fr/"}}, &fakeExtractor{}, 1)

	bad := svc.ProcessBytes(context.Background(), []byte{'A', 'c', 0xff, 'e'})
	assert.Equal(t, StatusEncodingError, bad.Status)
	assert.Equal(t, `"Ac\xffe"`, bad.CompanyName)
	assert.Empty(t, bad.Website)

	good := svc.ProcessBytes(context.Background(), []byte("Café Ltd"))
	assert.Equal(t, StatusSuccess, good.Status)
	assert.Equal(t, "https://cafe.fr/", good.Website)
}

type slowResolver struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowResolver) Resolve(_ context.Context, name string) (string, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return "https://" + name + ".com/", nil
}

func TestProcessAllKeepsOrderAndBound(t *testing.T) {
	resolver := &slowResolver{}
	svc := newService(resolver, &fakeExtractor{}, 3)

	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("company%d", i)
	}

	var mu sync.Mutex
	var seen []string
	results := svc.ProcessAll(context.Background(), names, func(r CompanyResult) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, r.CompanyName)
	})

	require.Len(t, results, len(names))
	for i, result := range results {
		assert.Equal(t, names[i], result.CompanyName)
		assert.Equal(t, "https://"+names[i]+".com/", result.Website)
	}
	assert.ElementsMatch(t, names, seen)
	assert.LessOrEqual(t, resolver.peak.Load(), int32(3))
}

func TestCompanyResultJSON(t *testing.T) {
	data, err := json.Marshal(CompanyResult{CompanyName: "Nowhere Ltd", Status: StatusNoWebsite})
	require.NoError(t, err)
	assert.JSONEq(t, `{"company_name":"Nowhere Ltd","website":null,"email":null,"phone":null,"status":"no_website_found"}`, string(data))

	data, err = json.Marshal(CompanyResult{CompanyName: "Acme", Website: "https://acme.com/", Email: "a@acme.com", Status: StatusSuccess})
	require.NoError(t, err)
	assert.JSONEq(t, `{"company_name":"Acme","website":"https://acme.com/","email":"a@acme.com","phone":null,"status":"success"}`, string(data))
}

// siteTransport sends every request to one test server, whatever its host
type siteTransport struct {
	target *url.URL
}

func (s siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = s.target.Scheme
	req.URL.Host = s.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

type searchRenderer struct{}

func (searchRenderer) Render(_ context.Context, rawURL, _ string) (string, error) {
	if u, _ := url.Parse(rawURL); u != nil && u.Query().Get("q") == "Acme Corp" {
		return `<div class="g"><a href="https://www.facebook.com/acmecorp"><h3>Acme</h3></a></div>
<div class="g"><a href="https://acme.com/"><h3>Acme Corp</h3></a></div>`, nil
	}
	return "<html></html>", nil
}

func TestEndToEnd(t *testing.T) {
	var mu sync.Mutex
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.URL.Path)
		mu.Unlock()

		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><body>
<nav><a href="/contact">Contact</a></nav>
<div class="contact-section">
<a href="mailto:jane@acme.com">Email Jane</a>
<a href="tel:+11234567890">Call us</a>
</div></body></html>`))
	}))
	defer srv.Close()
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Fetch.BaseDelay = 0
	cfg.Fetch.JitterMin = 0
	cfg.Fetch.JitterMax = 0
	cfg.Search.Directories = nil

	logger, _ := test.NewNullLogger()
	pages := fetcher.New(cfg.Fetch, logger, fetcher.WithTransport(siteTransport{target: target}))
	finder, err := discover.New(cfg.Discover, pages, logger)
	require.NoError(t, err)

	svc := NewService(
		resolver.New(cfg, searchRenderer{}, pages, nil, logger),
		extract.New(pages, finder, nil, logger),
		cfg.Workers,
		logger,
	)

	results := svc.ProcessAll(context.Background(), []string{"Acme Corp", "Nowhere Ltd"}, nil)

	assert.Equal(t, CompanyResult{
		CompanyName: "Acme Corp",
		Website:     "https://acme.com/",
		Email:       "jane@acme.com",
		Phone:       "+11234567890",
		Status:      StatusSuccess,
	}, results[0])
	assert.Equal(t, CompanyResult{CompanyName: "Nowhere Ltd", Status: StatusNoWebsite}, results[1])

	mu.Lock()
	defer mu.Unlock()
	// the homepage supplied both values, so no contact page was fetched
	assert.Equal(t, []string{"/"}, hits)
}
