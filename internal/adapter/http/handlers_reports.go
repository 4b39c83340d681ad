package adapthttp

import (
	"net/http"
	"time"

	"steplog/internal/domain"
)

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)
	events, err := s.reports.GetCalendar(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)
	rng := r.URL.Query().Get("range")

	// An explicit date pins the reference day, mainly for tests;
	// otherwise the chart is anchored to today.
	var ref time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := domain.ParseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		ref = parsed
	}

	series, err := s.reports.GetChart(r.Context(), user.ID, rng, ref)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
