package httpapi

import (
	"encoding/json"
	"net/http"

	"movebot/internal/session"
	"movebot/internal/stats"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleWorkout(w http.ResponseWriter, r *http.Request) {
	set := s.state.Current()
	if set == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout generated yet"})
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	records, err := s.read(r, "")
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, stats.AggregateAll(records))
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	records, err := s.read(r, user)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, stats.AggregateUser(records, user))
}

func (s *Server) read(r *http.Request, user string) ([]session.Record, error) {
	records, err := s.records.ReadAll(r.Context(), user)
	if err != nil {
		s.log.Error("read completions", zap.String("filter", user), zap.Error(err))
		return nil, err
	}
	if s.includePending {
		records = append(records, s.state.Pending()...)
	}
	return records, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
