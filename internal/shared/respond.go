package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorBody is the JSON envelope for failed requests.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encode response", slog.Any("error", err))
	}
}

// RespondError writes a JSON error envelope with the given status.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody{Error: message})
}

// RespondFieldError writes a JSON error envelope naming the offending field.
func RespondFieldError(w http.ResponseWriter, status int, field, message string) {
	RespondJSON(w, status, ErrorBody{Error: message, Field: field})
}

// RespondValidator writes the first struct-validation failure with its field name.
func RespondValidator(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		RespondFieldError(w, http.StatusUnprocessableEntity, fieldErrs[0].Field(), "failed validation on "+fieldErrs[0].Tag())
		return
	}
	RespondError(w, http.StatusUnprocessableEntity, err.Error())
}
