package adapthttp

import (
	"errors"
	"net/http"

	"steplog/internal/app"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(r)

	switch r.Method {
	case http.MethodGet:
		profile, err := s.authSvc.Profile(ctx, user.ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": profile})

	case http.MethodPut:
		var body struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		err := s.authSvc.UpdateProfile(ctx, user.ID, body.Name, body.Email)
		if errors.Is(err, app.ErrEmailTaken) {
			writeError(w, http.StatusConflict, err)
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "A profiladatok frissítve!", "severity": "success"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)

	var body struct {
		OldPassword  string `json:"oldPassword"`
		NewPassword  string `json:"newPassword"`
		NewPassword2 string `json:"newPassword2"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.authSvc.ChangePassword(r.Context(), user.ID, body.OldPassword, body.NewPassword, body.NewPassword2)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"message": "Jelszó sikeresen módosítva!", "severity": "success"})
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, app.ErrWeakPassword), errors.Is(err, app.ErrPasswordMismatch):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeDomainError(w, err)
	}
}
