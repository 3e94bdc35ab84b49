package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ButyrinIA/feedrank/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит вид ошибки в HTTP-статус; внутренние детали не раскрываются
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("внутренняя ошибка")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if e.Kind == apperr.KindUnavailable || e.Kind == apperr.KindInternal {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("хранилище недоступно")
	}
	writeJSON(w, e.Kind.HTTPStatus(), errorResponse{Error: e.Msg})
}

func unauthorized(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
}
