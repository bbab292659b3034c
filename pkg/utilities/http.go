package utilities

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErrorMessage writes {"error": msg}.
func WriteErrorMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteError maps err to a status code. Client errors carry err's text;
// server errors are logged and answered with fallback.
func WriteError(w http.ResponseWriter, logger *zap.SugaredLogger, err error, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Errorw(fallback, "err", err)
		}
		WriteErrorMessage(w, status, fallback)
		return
	}
	WriteErrorMessage(w, status, err.Error())
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// PathID parses the {name} path value as a base-10 int64.
func PathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
