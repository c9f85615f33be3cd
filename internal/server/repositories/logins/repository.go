// Package logins persists the sign-in audit trail.
package logins

import (
	"context"

	"github.com/grouptab/grouptab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, rec *models.LoginRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.LoginRecord, error)
}
