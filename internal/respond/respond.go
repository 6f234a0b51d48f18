// Package respond writes JSON responses and maps taxonomy errors to HTTP
// statuses. Handlers use it instead of repeating encoder boilerplate.
package respond

import (
	"encoding/json"
	"net/http"

	"funquizz/internal/apperr"
)

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

func Error(w http.ResponseWriter, err error) {
	JSON(w, apperr.Status(err), map[string]string{"message": apperr.Message(err)})
}
