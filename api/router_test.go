package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactscraper/scraper"
)

type fakeProcessor struct {
	batches [][]string
}

func (f *fakeProcessor) Process(_ context.Context, name string) scraper.CompanyResult {
	if name == "explode" {
		panic("boom")
	}
	if name == "Acme Corp" {
		return scraper.CompanyResult{CompanyName: name, Website: "https://acme.com/", Email: "jane@acme.com", Status: scraper.StatusSuccess}
	}
	return scraper.CompanyResult{CompanyName: name, Status: scraper.StatusNoWebsite}
}

func (f *fakeProcessor) ProcessAll(ctx context.Context, names []string, _ func(scraper.CompanyResult)) []scraper.CompanyResult {
	f.batches = append(f.batches, names)
	results := make([]scraper.CompanyResult, len(names))
	for i, name := range names {
		results[i] = f.Process(ctx, name)
	}
	return results
}

func newTestRouter() (http.Handler, *fakeProcessor, *test.Hook) {
	logger, hook := test.NewNullLogger()
	svc := &fakeProcessor{}
	return NewRouter(svc, logger), svc, hook
}

func TestLookup(t *testing.T) {
	router, _, hook := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lookup/Acme%20Corp", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"company_name":"Acme Corp","website":"https://acme.com/","email":"jane@acme.com","phone":null,"status":"success"}`, rec.Body.String())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request completed", entry.Message)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
}

func TestLookupKeepsCallerRequestID(t *testing.T) {
	router, _, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/lookup/Acme", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestBatchLookup(t *testing.T) {
	router, svc, _ := newTestRouter()

	body := `{"companies": ["Acme Corp", "  ", "Nowhere Ltd"]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "success", resp.Results[0]["status"])
	assert.Equal(t, "no_website_found", resp.Results[1]["status"])
	assert.Nil(t, resp.Results[1]["website"])
	assert.Equal(t, [][]string{{"Acme Corp", "Nowhere Ltd"}}, svc.batches)
}

func TestBatchLookupRejectsBadInput(t *testing.T) {
	router, svc, _ := newTestRouter()

	tooMany := `{"companies": [` + strings.Repeat(`"a",`, maxBatchSize) + `"a"]}`
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"companies": `, http.StatusBadRequest},
		{"empty", `{"companies": []}`, http.StatusBadRequest},
		{"blank names", `{"companies": [" "]}`, http.StatusBadRequest},
		{"too many", tooMany, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Empty(t, svc.batches)
}

func TestHealthAndMethods(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/lookup/Acme", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoversFromPanics(t *testing.T) {
	router, _, hook := newTestRouter()

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lookup/explode", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.InfoLevel && strings.Contains(entry.Message, "boom") {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestCompressesWhenAsked(t *testing.T) {
	router, _, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/lookup/Acme%20Corp", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}
