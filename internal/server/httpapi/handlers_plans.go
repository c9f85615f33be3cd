package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/grouptab/grouptab/internal/server/services"
)

type planResponse struct {
	ID           string    `json:"id"`
	GroupID      string    `json:"group_id"`
	Title        string    `json:"title"`
	TargetAmount int64     `json:"target_amount"`
	Spent        int64     `json:"spent"`
	StartsOn     time.Time `json:"starts_on"`
	EndsOn       time.Time `json:"ends_on"`
	CreatedBy    string    `json:"created_by"`
}

func toPlanResponse(pp *services.PlanProgress) planResponse {
	return planResponse{
		ID:           pp.Plan.ID,
		GroupID:      pp.Plan.GroupID,
		Title:        pp.Plan.Title,
		TargetAmount: pp.Plan.TargetAmount,
		Spent:        pp.Spent,
		StartsOn:     pp.Plan.StartsOn,
		EndsOn:       pp.Plan.EndsOn,
		CreatedBy:    pp.Plan.CreatedBy,
	}
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Title        string    `json:"title"`
		TargetAmount int64     `json:"target_amount"`
		StartsOn     time.Time `json:"starts_on"`
		EndsOn       time.Time `json:"ends_on"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	plan, err := s.plans.Create(r.Context(), p, chi.URLParam(r, "groupID"), req.Title, req.TargetAmount, req.StartsOn, req.EndsOn)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPlanResponse(&services.PlanProgress{Plan: plan}))
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	list, err := s.plans.List(r.Context(), p, chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]planResponse, 0, len(list))
	for _, pp := range list {
		out = append(out, toPlanResponse(pp))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.plans.Delete(r.Context(), p, chi.URLParam(r, "groupID"), chi.URLParam(r, "planID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
