package api

import (
	"encoding/json"
	"net/http"

	"budgetcoach/pkg/budget"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	if err := h.advisor.CheckConfigured(); err != nil {
		writeErrorResponse(w, err)
		return
	}

	var payload analyzePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeErrorResponse(w, budget.WrapError(budget.ErrCodeValidation, "invalid JSON body", err))
		return
	}
	req, err := payload.toRequest()
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	result, err := h.advisor.Analyze(r.Context(), req)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	outcomeOf(w).analyzed(result)
	writeJSON(w, http.StatusOK, result)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	return decoder.Decode(dst)
}
