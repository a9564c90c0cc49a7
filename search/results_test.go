package search

import (
	"encoding/base64"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactscraper/config"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestBuildURL(t *testing.T) {
	engines := config.Default().Search.Engines

	google := BuildURL(engines[0], "Acme Corp", "uk")
	parsed, err := url.Parse(google)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", parsed.Query().Get("q"))
	assert.Equal(t, "gb", parsed.Query().Get("gl"))

	bing := BuildURL(engines[1], "Acme Corp", "uk")
	assert.Equal(t, "https://www.bing.com/search?q=Acme+Corp", bing)
}

func TestExtractGoogleResults(t *testing.T) {
	doc := parse(t, `
<div class="g"><a href="/url?q=https://acme.com/&sa=U"><h3>Acme</h3></a></div>
<div class="g"><a href="https://www.facebook.com/acme"><h3>Acme on Facebook</h3></a></div>
<div class="g"><span>no link</span></div>
<div class="g"><a href="https://acme.org"><h3>Third</h3></a></div>`)

	results := ExtractResults(doc, "div.g", "https://www.google.com/search?q=acme", 2)
	require.Len(t, results, 2)
	assert.Equal(t, Result{Title: "Acme", URL: "https://acme.com/"}, results[0])
	assert.Equal(t, "https://www.facebook.com/acme", results[1].URL)
}

func TestExtractResultsCountsEntriesWithoutLinks(t *testing.T) {
	doc := parse(t, `
<div class="g"><a href="https://acme.com/"><h3>Acme</h3></a></div>
<div class="g"><span>ad</span></div>
<div class="g"><a href="https://acme.org"><h3>Third</h3></a></div>`)

	results := ExtractResults(doc, "div.g", "https://www.google.com/search?q=acme", 2)
	require.Len(t, results, 1)
	assert.Equal(t, "https://acme.com/", results[0].URL)

	assert.Len(t, ExtractResults(doc, "div.g", "https://www.google.com/search?q=acme", 3), 2)
}

func TestExtractBingResults(t *testing.T) {
	target := "https://acme.com/about"
	encoded := "a1" + base64.RawURLEncoding.EncodeToString([]byte(target))

	doc := parse(t, `<ol><li class="b_algo"><h2><a href="https://www.bing.com/ck/a?!&&p=abc&u=`+encoded+`&ntb=1">Acme</a></h2></li></ol>`)

	results := ExtractResults(doc, "li.b_algo", "https://www.bing.com/search?q=acme", 5)
	require.Len(t, results, 1)
	assert.Equal(t, target, results[0].URL)
	assert.Equal(t, "Acme", results[0].Title)
}

func TestLinks(t *testing.T) {
	doc := parse(t, `<div class="g"><a href="/path">one</a><a href="https://b.com">two</a><a>none</a></div>`)
	assert.Equal(t,
		[]string{"https://www.google.com/path", "https://b.com"},
		Links(doc, ".g a", "https://www.google.com/search?q=x"))
}
