// Package groups provides repositories for groups and their memberships.
package groups

import (
	"context"

	"github.com/grouptab/grouptab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, group *models.Group) (*models.Group, error)
	GetByID(ctx context.Context, id string) (*models.Group, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Group, error)
	Update(ctx context.Context, id, name, description string) error
	Delete(ctx context.Context, id string) error
}

type MembershipRepository interface {
	Create(ctx context.Context, m *models.Membership) (*models.Membership, error)
	Get(ctx context.Context, groupID, userID string) (*models.Membership, error)
	ListByGroup(ctx context.Context, groupID string) ([]*models.Membership, error)
	Delete(ctx context.Context, groupID, userID string) error
}
