package hardware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// NewServer exposes a Catalog over HTTP in the shape Client expects:
// GET /hardware/{serial} answers {"data": Record} or 404.
func NewServer(catalog Catalog, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/hardware/{serial}", func(w http.ResponseWriter, req *http.Request) {
		serial := chi.URLParam(req, "serial")
		record, err := catalog.Lookup(req.Context(), serial)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case errors.Is(err, ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "Hardware not found", "found": false})
			return
		case err != nil:
			logger.Error("catalog lookup failed", "serial_number", serial, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch hardware specifications"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": record})
	})

	return r
}
