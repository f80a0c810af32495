package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marcelsud/webhook-dispatch/webhook"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain errors to status codes; anything unexpected is a 500
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *webhook.ValidationError
		unknown    *webhook.UnknownEventTypeError
		notFound   *webhook.NotFoundError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Error(), Fields: validation.Problems})
	case errors.As(err, &unknown):
		writeMessage(w, http.StatusBadRequest, unknown.Error())
	case errors.As(err, &notFound):
		writeMessage(w, http.StatusNotFound, notFound.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}
