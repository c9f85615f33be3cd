// Package events provides repositories for group events and RSVPs.
package events

import (
	"context"

	"github.com/grouptab/grouptab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	ListByGroup(ctx context.Context, groupID string) ([]*models.Event, error)
	Delete(ctx context.Context, id string) error
}

type RSVPRepository interface {
	Upsert(ctx context.Context, rsvp *models.RSVP) error
	ListByEvent(ctx context.Context, eventID string) ([]*models.RSVP, error)
}
