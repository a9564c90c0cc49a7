package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type requestIDKey struct{}

// NewRouter wires the lookup routes behind recovery, compression and access logging
func NewRouter(svc Processor, log logrus.FieldLogger) http.Handler {
	h := &handler{svc: svc, log: log}

	router := mux.NewRouter()
	router.Use(requestID)
	router.HandleFunc("/lookup/{company}", h.LookupHandler).Methods(http.MethodGet)
	router.HandleFunc("/lookup", h.BatchLookupHandler).Methods(http.MethodPost)
	router.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	var wrapped http.Handler = router
	wrapped = handlers.CompressHandler(wrapped)
	wrapped = handlers.CustomLoggingHandler(io.Discard, wrapped, accessLog(log))
	wrapped = handlers.RecoveryHandler(handlers.RecoveryLogger(log))(wrapped)
	return wrapped
}

// RequestID returns the id assigned to the request, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestID tags each request with an X-Request-ID, reusing the caller's when present
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// accessLog writes one logrus entry per request instead of a combined log line
func accessLog(log logrus.FieldLogger) handlers.LogFormatter {
	return func(_ io.Writer, params handlers.LogFormatterParams) {
		log.WithFields(logrus.Fields{
			"method":      params.Request.Method,
			"path":        params.URL.Path,
			"status":      params.StatusCode,
			"size":        params.Size,
			"duration_ms": time.Since(params.TimeStamp).Milliseconds(),
			"remote_addr": params.Request.RemoteAddr,
		}).Info("request completed")
	}
}
