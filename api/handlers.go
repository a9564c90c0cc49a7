// Package api exposes company contact lookup over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"contactscraper/scraper"
)

// maxBatchSize caps the companies accepted by one POST /lookup
const maxBatchSize = 100

// Processor is the company pipeline served by the handlers
type Processor interface {
	Process(ctx context.Context, companyName string) scraper.CompanyResult
	ProcessAll(ctx context.Context, names []string, onResult func(scraper.CompanyResult)) []scraper.CompanyResult
}

// LookupRequest is the body of POST /lookup
type LookupRequest struct {
	Companies []string `json:"companies"`
}

// LookupResponse is the body returned by POST /lookup
type LookupResponse struct {
	Results []scraper.CompanyResult `json:"results"`
}

type handler struct {
	svc Processor
	log logrus.FieldLogger
}

// LookupHandler processes the company named in the path
func (h *handler) LookupHandler(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(mux.Vars(r)["company"])
	if company == "" {
		http.Error(w, "Company parameter is required", http.StatusBadRequest)
		return
	}

	h.log.WithFields(logrus.Fields{
		"request_id": RequestID(r.Context()),
		"company":    company,
	}).Debug("lookup requested")

	h.writeJSON(w, h.svc.Process(r.Context(), company))
}

// BatchLookupHandler processes every company in the request body
func (h *handler) BatchLookupHandler(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	names := make([]string, 0, len(req.Companies))
	for _, name := range req.Companies {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	switch {
	case len(names) == 0:
		http.Error(w, "At least one company is required", http.StatusBadRequest)
		return
	case len(names) > maxBatchSize:
		http.Error(w, "Too many companies in one request", http.StatusRequestEntityTooLarge)
		return
	}

	h.log.WithFields(logrus.Fields{
		"request_id": RequestID(r.Context()),
		"companies":  len(names),
	}).Debug("batch lookup requested")

	h.writeJSON(w, LookupResponse{Results: h.svc.ProcessAll(r.Context(), names, nil)})
}

// HealthHandler reports liveness
func (h *handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

func (h *handler) writeJSON(w http.ResponseWriter, v any) {
	jsonData, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		h.log.WithError(err).Error("failed to encode response")
		http.Error(w, "Error marshaling to JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonData)
}
