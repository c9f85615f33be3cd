package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/grouptab/grouptab/internal/server/models"
)

func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := s.users.GetCurrentUser(r.Context(), p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

type loginRecordResponse struct {
	At     time.Time `json:"at"`
	Remote string    `json:"remote"`
}

func (s *Server) handleRecentLogins(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := s.users.RecentLogins(r.Context(), p, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]loginRecordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toLoginRecordResponse(rec))
	}
	respondJSON(w, http.StatusOK, out)
}

func toLoginRecordResponse(rec *models.LoginRecord) loginRecordResponse {
	return loginRecordResponse{At: rec.At, Remote: rec.Remote}
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	targetID := chi.URLParam(r, "userID")
	if err := s.users.UpdateProfile(r.Context(), p, targetID, req.Name, req.Email); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	targetID := chi.URLParam(r, "userID")
	if err := s.users.ChangePassword(r.Context(), p, targetID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteUser removes the account and ends the session: deleted
// users should not keep working cookies.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	targetID := chi.URLParam(r, "userID")
	if err := s.users.DeleteUser(r.Context(), p, targetID); err != nil {
		respondError(w, err)
		return
	}
	s.clearTokenCookies(w)
	w.WriteHeader(http.StatusNoContent)
}
