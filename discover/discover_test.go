package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactscraper/config"
	"contactscraper/fetcher"
)

const contactPage = `<html><body><div class="contact-details">
<form class="contact-form"><input name="message"></form>
<p>Email: info@acme.com</p><p>Call 555-234-5678</p>
</div></body></html>`

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func newDiscoverer(t *testing.T, topN int) *Discoverer {
	t.Helper()
	cfg := config.Default()
	cfg.Fetch.BaseDelay = 0
	cfg.Fetch.JitterMin = 0
	cfg.Fetch.JitterMax = 0
	cfg.Fetch.Timeout = time.Second
	cfg.Discover.TopN = topN

	logger, _ := test.NewNullLogger()
	d, err := New(cfg.Discover, fetcher.New(cfg.Fetch, logger), logger)
	require.NoError(t, err)
	return d
}

type site struct {
	mu    sync.Mutex
	pages map[string]string
	hits  []string
}

func (s *site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits = append(s.hits, r.URL.Path)
	body, ok := s.pages[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte(strings.ReplaceAll(body, "{{host}}", "http://"+r.Host)))
}

func TestRelevance(t *testing.T) {
	rich := parse(t, `<html><body><section class="contact-section">
<form class="enquiry-form"></form>
<p>Office hours: 9-5</p>
<ul class="social-links"><li>x</li></ul>
<p>info@acme.com</p><p>+1 555-234-5678</p>
<iframe class="google-map" src="about:blank"></iframe>
</section></body></html>`)
	assert.InDelta(t, 1.0, Relevance(rich), 1e-9)

	plain := parse(t, `<html><body><p>Welcome to our shop</p><script>var mail = "a@b.com";</script></body></html>`)
	assert.Zero(t, Relevance(plain))

	assert.Greater(t, Relevance(parse(t, contactPage)), 0.4)
}

func TestScoreURL(t *testing.T) {
	tests := []struct {
		url  string
		want float64
	}{
		{"https://acme.com/contact", 0.8},
		{"https://acme.com/Contact-Us", 0.8},
		{"https://acme.com/get-in-touch", 0.6},
		{"https://acme.com/about", 0.4},
		{"https://acme.com/help", 0.5},
		{"https://acme.com/support", 0.5},
		{"https://acme.com/products", 0},
		{"https://acme.com/a/b/c/contact", 0.6},
		{"https://acme.com/a/b/c/d/e/f", 0},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreURL(tt.url), 1e-9)
		})
	}
}

func TestDiscoverCollectsAndRanks(t *testing.T) {
	s := &site{pages: map[string]string{
		"/": `<html><head><meta name="contact" content="/contact-us"></head><body>
<header><nav><a href="/">Home</a><a href="/products">Products</a><a href="/get-in-touch">Talk to us</a></nav></header>
<div class="main-nav"><a href="/about-us/contact">Team</a></div>
<script type="application/ld+json">{"@type":"Organization","contactPoint":{"@type":"ContactPoint","url":"/support/contact/form/x"}}</script>
<footer><a href="https://partner.example.org/contact">Partner</a><a href="/sitemap.xml">Sitemap</a></footer>
</body></html>`,
		"/sitemap.xml": `<urlset><url><loc>{{host}}/kontakt</loc></url><url><loc>{{host}}/products</loc></url></urlset>`,
		"/contact":     contactPage,
		"/locations":   `<html><body><p>Find a location near you</p></body></html>`,
	}}
	srv := httptest.NewServer(s)
	defer srv.Close()

	base := srv.URL + "/"
	home := parse(t, strings.ReplaceAll(s.pages["/"], "{{host}}", srv.URL))

	all := newDiscoverer(t, 10).Discover(context.Background(), home, base)
	assert.ElementsMatch(t, []string{
		srv.URL + "/get-in-touch",
		srv.URL + "/about-us/contact",
		srv.URL + "/support/contact/form/x",
		srv.URL + "/contact-us",
		srv.URL + "/kontakt",
		srv.URL + "/contact",
	}, all)

	top := newDiscoverer(t, 3).Discover(context.Background(), home, base)
	assert.Equal(t, []string{
		srv.URL + "/about-us/contact",
		srv.URL + "/contact-us",
		srv.URL + "/contact",
	}, top)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Contains(t, s.hits, "/sitemap.xml")
	assert.Contains(t, s.hits, "/locations")
	// already discovered paths are not probed
	assert.NotContains(t, s.hits, "/contact-us")
	assert.NotContains(t, s.hits, "/get-in-touch")
}

func TestDiscoverIncludesRelevantHomepage(t *testing.T) {
	srv := httptest.NewServer(&site{pages: map[string]string{}})
	defer srv.Close()

	home := parse(t, `<html><body><div class="contact-block">
<form class="contact-form"></form>
<p>Opening hours Mon-Fri</p>
<p>hello@acme.com</p><p>(555) 234-5678</p>
</div></body></html>`)

	got := newDiscoverer(t, 3).Discover(context.Background(), home, srv.URL+"/")
	assert.Equal(t, []string{srv.URL + "/"}, got)
}

func TestDiscoverStopsProbingWhenCancelled(t *testing.T) {
	s := &site{pages: map[string]string{}}
	srv := httptest.NewServer(s)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := newDiscoverer(t, 3).Discover(ctx, parse(t, "<html></html>"), srv.URL+"/")
	assert.Empty(t, got)
	assert.Empty(t, s.hits)
}

func TestJSONLDContactURLs(t *testing.T) {
	d := newDiscoverer(t, 3)

	var data any
	require.NoError(t, json.Unmarshal([]byte(`{"@graph":[
		{"@type":"Organization","url":"https://acme.com","contactPoint":[{"url":"/contact/sales"},{"telephone":"+1"}]},
		{"@type":"WebPage","url":"https://acme.com/kontakt"}
	]}`), &data))

	assert.Equal(t, []string{"/contact/sales", "https://acme.com/kontakt"}, d.jsonLDContactURLs(data))
}

func TestNewRejectsBadVocabulary(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := New(config.DiscoverConfig{Vocabulary: config.Vocabulary{"url_patterns": {"("}}}, nil, logger)
	assert.Error(t, err)
}

func ExampleScoreURL() {
	fmt.Println(ScoreURL("https://acme.com/contact"))
	// Output: 0.8
}

func TestRankIsStable(t *testing.T) {
	ranked := Rank([]string{
		"https://acme.com/",
		"https://acme.com/reach-us",
		"https://acme.com/contact",
		"https://acme.com/connect",
	})

	require.Len(t, ranked, 4)
	assert.Equal(t, "https://acme.com/contact", ranked[0].URL)
	assert.Equal(t, "https://acme.com/reach-us", ranked[1].URL)
	assert.Equal(t, "https://acme.com/connect", ranked[2].URL)
	assert.Equal(t, Candidate{URL: "https://acme.com/", Score: 0}, ranked[3])
}
