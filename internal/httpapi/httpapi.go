// Package httpapi exposes the import pipeline over HTTP. The import
// endpoint requires the administrative bearer token; unauthorized calls are
// rejected with the fixed permission token before any other processing.
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/model"
	"github.com/siteforge/demoimport/internal/pipeline"
	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

// Handler serves the import API.
type Handler struct {
	pipeline *pipeline.Pipeline
	token    string
	log      *logger.Logger
}

// NewHandler creates the API handler around a pipeline.
func NewHandler(p *pipeline.Pipeline, adminToken string, log *logger.Logger) *Handler {
	return &Handler{pipeline: p, token: adminToken, log: log.WithComponent("http")}
}

// Router builds the chi router for the API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.With(h.requireAdmin).Post("/imports", h.handleImport)
	})
	return r
}

// requireAdmin rejects callers without the administrative bearer token. This
// runs before anything else touches the request body.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if h.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1 {
			h.log.Warn("rejected unauthorized import request")
			writeJSON(w, http.StatusForbidden, model.Failure(apperrors.TokenPermission))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)

	var req model.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.Failure("invalid request body"))
		return
	}

	result := h.pipeline.Run(r.Context(), req)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
