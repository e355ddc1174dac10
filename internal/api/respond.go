package api

import (
	"encoding/json"
	"net/http"

	httperr "apexparking/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err *httperr.HTTPError) {
	writeJSON(w, err.Code, map[string]string{"error": err.Message})
}
