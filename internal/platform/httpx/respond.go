package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorBody is the failure envelope: an operation-level message plus the
// root cause raised by the domain layer.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error maps the error kind to a status code and writes the failure envelope.
// Unrecognised kinds become 500 with the cause withheld.
func Error(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		JSON(w, http.StatusNotFound, ErrorBody{Message: message, Error: err.Error()})
	case errors.Is(err, ErrValidation), errors.Is(err, ErrIllegalArgument):
		JSON(w, http.StatusBadRequest, ErrorBody{Message: message, Error: err.Error()})
	default:
		JSON(w, http.StatusInternalServerError, ErrorBody{Message: message})
	}
}

// ErrorMessage writes the failure envelope with only the operation message,
// keeping the kind-to-status mapping. Used by lookup endpoints whose contract
// is a bare {message} body.
func ErrorMessage(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		JSON(w, http.StatusNotFound, ErrorBody{Message: message})
	case errors.Is(err, ErrValidation), errors.Is(err, ErrIllegalArgument):
		JSON(w, http.StatusBadRequest, ErrorBody{Message: message})
	default:
		JSON(w, http.StatusInternalServerError, ErrorBody{Message: message})
	}
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
