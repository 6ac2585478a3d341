// Package handlers provides the HTTP handlers of the sqlpager API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nnnkkk7/sqlpager/server/apierror"
)

func sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// sendError writes err with the status its code maps to.
func sendError(w http.ResponseWriter, err *apierror.APIError) {
	status := err.Status
	if status == 0 {
		status = apierror.StatusFor(err.Code)
	}
	sendJSON(w, status, err.ToResponse())
}
