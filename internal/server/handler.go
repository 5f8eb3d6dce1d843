package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"yardwatch/internal/alert"
	"yardwatch/internal/inventory"
)

func (s Server) writeJsonResponse(w http.ResponseWriter, response any, statusCode int) {
	if resp, err := json.Marshal(response); err != nil {
		s.Logger.Errorf("Error encoding response: %+v, err: %v", response, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	} else {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode)
		if _, err = w.Write(resp); err != nil {
			s.Logger.Errorf("Error writing JSON response: %s, err: %v", resp, err)
		}
	}
}

func (s Server) writeJsonError(w http.ResponseWriter, message string, statusCode int) {
	type errorResponse struct {
		Error string `json:"error"`
	}
	s.writeJsonResponse(w, errorResponse{Error: message}, statusCode)
}

// writeEngineError maps the alert engine's error taxonomy onto HTTP
// statuses.
func (s Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, alert.ErrValidation), errors.Is(err, inventory.ErrEmptyMake):
		s.writeJsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, alert.ErrConflict):
		s.writeJsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, alert.ErrQuota):
		s.writeJsonError(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, alert.ErrNotFound):
		s.writeJsonError(w, err.Error(), http.StatusNotFound)
	default:
		s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
