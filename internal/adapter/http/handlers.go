package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/couchcryptid/metar-card-service/internal/lookup"
)

// Plain-text bodies of the report proxy.
const (
	bodyInvalid     = "Invalid ICAO"
	bodyUnavailable = "Unavailable"
	bodyServerError = "Server error"
)

// handleMetar is the report proxy: validate, fetch through the provider
// chain, and return the raw line as text. The code is uppercased but not
// trimmed, so padded input is rejected.
func (s *Server) handleMetar(w http.ResponseWriter, r *http.Request) {
	code := domain.StationCode(strings.ToUpper(r.URL.Query().Get("icao")))
	if !code.Valid() {
		writeText(w, http.StatusBadRequest, bodyInvalid)
		return
	}

	report, err := s.reports.FetchReport(r.Context(), code)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, report.Raw)
	case errors.Is(err, domain.ErrInvalidCode):
		writeText(w, http.StatusBadRequest, bodyInvalid)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUpstream):
		writeText(w, http.StatusBadGateway, bodyUnavailable)
	default:
		s.logger.Error("fetch report failed", "icao", code, "error", err)
		writeText(w, http.StatusInternalServerError, bodyServerError)
	}
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := s.lookups.Lookup(r.Context(), lookup.Request{
		Code:      q.Get("icao"),
		Input:     q.Get("input"),
		Displayed: q.Get("displayed"),
	})

	status := http.StatusOK
	if res.State == lookup.StateError {
		status = http.StatusBadGateway
		if errors.Is(res.Err, domain.ErrInvalidCode) {
			status = http.StatusBadRequest
		}
	}
	writeJSON(w, status, res)
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.lookups.Favorites(r.Context())
	if err != nil {
		s.serverError(w, "list favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	favs, err := s.lookups.AddFavorite(r.Context(), r.PathValue("icao"))
	if errors.Is(err, domain.ErrInvalidCode) {
		writeJSON(w, http.StatusBadRequest, errorBody(lookup.MsgInvalidCode))
		return
	}
	if err != nil {
		s.serverError(w, "add favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	_, err := s.lookups.RemoveFavorite(r.Context(), r.PathValue("icao"))
	if errors.Is(err, domain.ErrInvalidCode) {
		writeJSON(w, http.StatusBadRequest, errorBody(lookup.MsgInvalidCode))
		return
	}
	if err != nil {
		s.serverError(w, "remove favorite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	code, _, err := s.lookups.LastCode(r.Context())
	if err != nil {
		s.serverError(w, "read last code", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"icao": code.String()})
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody(bodyServerError))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}
