package httpapi

import (
	"net/http"
	"time"

	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/server/models"
)

type userResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	pair, user, err := s.users.SignIn(r.Context(), req.Email, req.Password, r.RemoteAddr)
	if err != nil {
		respondError(w, err)
		return
	}
	s.attachTokenCookies(w, pair)
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearTokenCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleRefresh rotates the token pair from the refresh cookie. The body
// is empty; everything travels in cookies.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(refreshCookieName)
	if err != nil {
		respondError(w, common.ErrInvalidToken)
		return
	}

	pair, err := s.users.Refresh(r.Context(), c.Value)
	if err != nil {
		s.clearTokenCookies(w)
		respondError(w, err)
		return
	}
	s.attachTokenCookies(w, pair)
	w.WriteHeader(http.StatusNoContent)
}
