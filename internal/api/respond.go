package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/andriandrian/lifeline-admin/internal/database"
	"github.com/andriandrian/lifeline-admin/internal/storage"
	"github.com/andriandrian/lifeline-admin/internal/validation"
)

// Envelope wraps every API response.
type Envelope struct {
	Code  int    `json:"code" example:"200"`
	Data  any    `json:"data"`
	Error string `json:"error,omitempty" example:""`
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(Envelope{Code: code, Data: data}) //nolint:errcheck // client gone
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(Envelope{Code: code, Error: msg}) //nolint:errcheck // client gone
}

func writeValidationError(w http.ResponseWriter, verr *validation.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(Envelope{ //nolint:errcheck // client gone
		Code:  http.StatusBadRequest,
		Data:  verr.Fields,
		Error: verr.Error(),
	})
}

// writeStoreError maps database and validation errors to responses. Anything
// unrecognised is logged and reported as 500.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, entity string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, entity+" not found")
	case errors.Is(err, database.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrDuplicate), errors.Is(err, database.ErrReference):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrUnsupportedStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotImage):
		writeError(w, http.StatusBadRequest, "Image must be a picture file")
	default:
		s.log.WithFields(logrus.Fields{
			"entity":     entity,
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": requestID(r),
		}).WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
