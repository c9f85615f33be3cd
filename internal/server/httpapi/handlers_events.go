package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/grouptab/grouptab/internal/server/models"
)

type eventResponse struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	StartsAt  time.Time `json:"starts_at"`
	CreatedBy string    `json:"created_by"`
}

func toEventResponse(e *models.Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		GroupID:   e.GroupID,
		Title:     e.Title,
		Location:  e.Location,
		StartsAt:  e.StartsAt,
		CreatedBy: e.CreatedBy,
	}
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Title    string    `json:"title"`
		Location string    `json:"location"`
		StartsAt time.Time `json:"starts_at"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	e, err := s.events.Create(r.Context(), p, chi.URLParam(r, "groupID"), req.Title, req.Location, req.StartsAt)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toEventResponse(e))
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	es, err := s.events.List(r.Context(), p, chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]eventResponse, 0, len(es))
	for _, e := range es {
		out = append(out, toEventResponse(e))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.events.Delete(r.Context(), p, chi.URLParam(r, "groupID"), chi.URLParam(r, "eventID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRSVP(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	rsvp, err := s.events.Respond(r.Context(), p, chi.URLParam(r, "groupID"), chi.URLParam(r, "eventID"), models.RSVPStatus(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		EventID     string    `json:"event_id"`
		UserID      string    `json:"user_id"`
		Status      string    `json:"status"`
		RespondedAt time.Time `json:"responded_at"`
	}{rsvp.EventID, rsvp.UserID, string(rsvp.Status), rsvp.RespondedAt})
}

func (s *Server) handleListRSVPs(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	rs, err := s.events.ListResponses(r.Context(), p, chi.URLParam(r, "groupID"), chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, err)
		return
	}
	type item struct {
		UserID      string    `json:"user_id"`
		Status      string    `json:"status"`
		RespondedAt time.Time `json:"responded_at"`
	}
	out := make([]item, 0, len(rs))
	for _, rsvp := range rs {
		out = append(out, item{rsvp.UserID, string(rsvp.Status), rsvp.RespondedAt})
	}
	respondJSON(w, http.StatusOK, out)
}
