package adapthttp

import (
	"net/http"
)

type stepPayload struct {
	Date  string `json:"date"`
	Steps int    `json:"steps"`
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(r)

	switch r.Method {
	case http.MethodGet:
		overview, err := s.reports.GetOverview(ctx, user.ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, overview)

	case http.MethodPut, http.MethodPost:
		var body stepPayload
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		entry, created, err := s.steps.Upsert(ctx, user.ID, body.Date, body.Steps)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		message := "A napi lépésszám frissítve lett!"
		status := http.StatusOK
		if created {
			message = "A napi lépésszám rögzítve lett!"
			status = http.StatusCreated
		}
		writeJSON(w, status, map[string]any{"entry": entry, "message": message, "severity": "success"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStepByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(r)

	id, ok := pathID(r, "/steps/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, err := s.steps.Get(ctx, user.ID, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entry": entry})

	case http.MethodPut:
		var body stepPayload
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		entry, err := s.steps.Edit(ctx, user.ID, id, body.Date, body.Steps)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entry": entry, "message": "A rekord frissítve lett!", "severity": "success"})

	case http.MethodDelete:
		if err := s.steps.Delete(ctx, user.ID, id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "A rekord törölve lett!", "severity": "success"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
