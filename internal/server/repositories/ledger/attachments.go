package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/dbx"
	"github.com/grouptab/grouptab/internal/server/models"
)

type PostgresAttachmentRepository struct {
	db dbx.DBTX
}

func NewPostgresAttachmentRepository(db dbx.DBTX) *PostgresAttachmentRepository {
	return &PostgresAttachmentRepository{db: db}
}

// Create inserts a pending attachment. A second receipt for the same entry
// surfaces as common.ErrAlreadyExists via the unique index on entry_id.
func (r *PostgresAttachmentRepository) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	query := `INSERT INTO attachments (id, entry_id, storage_key, upload_status)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at`

	a.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.EntryID, a.StorageKey, string(a.UploadStatus)).
		Scan(&a.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresAttachmentRepository) GetByEntry(ctx context.Context, entryID string) (*models.Attachment, error) {
	query := `SELECT id, entry_id, storage_key, upload_status, created_at
	          FROM attachments WHERE entry_id = $1`

	a := &models.Attachment{}
	var status string
	err := r.db.QueryRowContext(ctx, query, entryID).
		Scan(&a.ID, &a.EntryID, &a.StorageKey, &status, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	a.UploadStatus = models.AttachmentStatus(status)
	return a, nil
}

func (r *PostgresAttachmentRepository) MarkUploaded(ctx context.Context, id string) error {
	query := `UPDATE attachments SET upload_status = 'uploaded' WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresAttachmentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM attachments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}
