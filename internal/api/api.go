package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"budgetcoach/pkg/budget"
)

// maxRequestBodyBytes bounds the /analyze payload.
const maxRequestBodyBytes = 1 << 20

// NewRouter builds the HTTP API router.
func NewRouter(advisor *budget.Advisor) http.Handler {
	logger := advisor.Logger()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoveryLoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	h := &handler{advisor: advisor}

	r.Get("/api/health", h.health)
	r.Post("/analyze", h.analyze)

	return r
}

type handler struct {
	advisor *budget.Advisor
}

// writeJSON encodes payload before touching the header so that an
// unencodable payload becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		failure := ErrorResponse{Error: "failed to encode response", ErrorCode: string(budget.ErrCodeInternal)}
		outcomeOf(w).fail(failure.Error+": "+err.Error(), failure.ErrorCode)
		status = http.StatusInternalServerError
		body.Reset()
		_ = json.NewEncoder(&body).Encode(failure)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	outcomeOf(w).fail(message, "")
	writeJSON(w, status, ErrorResponse{Error: message})
}
