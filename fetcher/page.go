package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrRetriesExhausted is returned once the attempt budget is spent
	ErrRetriesExhausted = errors.New("fetcher: retries exhausted")
	// ErrTooManyRedirects is returned when a redirect chain exceeds MaxRedirects hops
	ErrTooManyRedirects = errors.New("fetcher: too many redirects")
	// ErrRedirectLoop is returned when a redirect chain revisits a URL
	ErrRedirectLoop = errors.New("fetcher: redirect loop")
)

// StatusError reports a response status that is neither success, rate limiting nor a redirect
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetcher: %s returned status %d", e.URL, e.StatusCode)
}

// Page is a successfully fetched document, decompressed and decoded to UTF-8
type Page struct {
	URL        string      `json:"url"`
	FinalURL   string      `json:"final_url"`
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"-"`
	Body       []byte      `json:"body"`
}

// Document parses the page body with goquery
func (p *Page) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", p.FinalURL, err)
	}
	return doc, nil
}
