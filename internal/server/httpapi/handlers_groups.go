package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/grouptab/grouptab/internal/server/models"
)

type groupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     g.OwnerID,
		CreatedAt:   g.CreatedAt,
	}
}

type membershipResponse struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	g, err := s.groups.Create(r.Context(), p, req.Name, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toGroupResponse(g))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	gs, err := s.groups.ListMine(r.Context(), p)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]groupResponse, 0, len(gs))
	for _, g := range gs {
		out = append(out, toGroupResponse(g))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	g, err := s.groups.Get(r.Context(), p, chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupResponse(g))
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := s.groups.Update(r.Context(), p, chi.URLParam(r, "groupID"), req.Name, req.Description); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.groups.Delete(r.Context(), p, chi.URLParam(r, "groupID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	ms, err := s.groups.ListMembers(r.Context(), p, chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]membershipResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, membershipResponse{UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	m, err := s.groups.Join(r.Context(), p, chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, membershipResponse{UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt})
}

func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.groups.Leave(r.Context(), p, chi.URLParam(r, "groupID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
