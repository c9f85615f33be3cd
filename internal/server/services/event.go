package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/server/auth"
	"github.com/grouptab/grouptab/internal/server/models"
	"github.com/grouptab/grouptab/internal/server/repositories/repomanager"
)

// EventService manages group events and attendance answers.
type EventService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	groups      *GroupService
}

func NewEventService(db *sql.DB, m repomanager.RepositoryManager, groups *GroupService) *EventService {
	return &EventService{db: db, repomanager: m, groups: groups}
}

// Create schedules an event for the group. Members only.
func (s *EventService) Create(ctx context.Context, p auth.Principal, groupID, title, location string, startsAt time.Time) (*models.Event, error) {
	if err := s.groups.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" || startsAt.IsZero() {
		return nil, common.ErrInvalidArgument
	}

	event := &models.Event{
		GroupID:   groupID,
		Title:     title,
		Location:  location,
		StartsAt:  startsAt,
		CreatedBy: p.UserID,
	}
	return s.repomanager.Events(s.db).Create(ctx, event)
}

// List returns the group's events in start order. Members only.
func (s *EventService) List(ctx context.Context, p auth.Principal, groupID string) ([]*models.Event, error) {
	if err := s.groups.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	return s.repomanager.Events(s.db).ListByGroup(ctx, groupID)
}

// Delete removes an event and its RSVPs. Allowed for the creator or the
// group owner.
func (s *EventService) Delete(ctx context.Context, p auth.Principal, groupID, eventID string) error {
	event, err := s.loadEvent(ctx, p, groupID, eventID)
	if err != nil {
		return err
	}
	if event.CreatedBy != p.UserID {
		if err := s.groups.requireOwner(ctx, groupID, p.UserID); err != nil {
			return err
		}
	}
	return s.repomanager.Events(s.db).Delete(ctx, eventID)
}

// Respond upserts the caller's attendance answer. Members only; a repeated
// answer replaces the earlier one.
func (s *EventService) Respond(ctx context.Context, p auth.Principal, groupID, eventID string, status models.RSVPStatus) (*models.RSVP, error) {
	if !status.Valid() {
		return nil, common.ErrInvalidArgument
	}
	if _, err := s.loadEvent(ctx, p, groupID, eventID); err != nil {
		return nil, err
	}

	rsvp := &models.RSVP{
		EventID:     eventID,
		UserID:      p.UserID,
		Status:      status,
		RespondedAt: time.Now(),
	}
	if err := s.repomanager.RSVPs(s.db).Upsert(ctx, rsvp); err != nil {
		return nil, err
	}
	return rsvp, nil
}

// ListResponses returns all answers for an event. Members only.
func (s *EventService) ListResponses(ctx context.Context, p auth.Principal, groupID, eventID string) ([]*models.RSVP, error) {
	if _, err := s.loadEvent(ctx, p, groupID, eventID); err != nil {
		return nil, err
	}
	return s.repomanager.RSVPs(s.db).ListByEvent(ctx, eventID)
}

func (s *EventService) loadEvent(ctx context.Context, p auth.Principal, groupID, eventID string) (*models.Event, error) {
	if err := s.groups.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	event, err := s.repomanager.Events(s.db).GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.GroupID != groupID {
		return nil, common.ErrorNotFound
	}
	return event, nil
}
