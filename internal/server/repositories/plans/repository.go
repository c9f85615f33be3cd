// Package plans provides the repository for group financial plans.
package plans

import (
	"context"

	"github.com/grouptab/grouptab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, plan *models.Plan) (*models.Plan, error)
	GetByID(ctx context.Context, id string) (*models.Plan, error)
	ListByGroup(ctx context.Context, groupID string) ([]*models.Plan, error)
	Delete(ctx context.Context, id string) error
}
