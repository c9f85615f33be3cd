// Package ledger provides repositories for the shared account book and
// its receipt attachments.
package ledger

import (
	"context"
	"time"

	"github.com/grouptab/grouptab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error)
	GetByID(ctx context.Context, id string) (*models.LedgerEntry, error)
	ListByGroup(ctx context.Context, groupID string, from, to time.Time) ([]*models.LedgerEntry, error)
	Update(ctx context.Context, entry *models.LedgerEntry) error
	Delete(ctx context.Context, id string) error
	Summarize(ctx context.Context, groupID string, from, to time.Time) (*models.LedgerSummary, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	GetByEntry(ctx context.Context, entryID string) (*models.Attachment, error)
	MarkUploaded(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
