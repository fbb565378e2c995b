package api

import (
	"errors"
	"net/http"

	"budgetcoach/pkg/budget"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
}

// writeErrorResponse reports err as a 500. Every failure class shares the
// status code; error_code tells them apart.
func writeErrorResponse(w http.ResponseWriter, err error) {
	response := ErrorResponse{
		Error:     err.Error(),
		ErrorCode: string(budget.ErrCodeInternal),
	}

	var budgetErr *budget.Error
	if errors.As(err, &budgetErr) {
		response.Error = budgetErr.Detail()
		response.ErrorCode = string(budgetErr.Code)
	}

	outcomeOf(w).fail(response.Error, response.ErrorCode)
	writeJSON(w, http.StatusInternalServerError, response)
}
