package logins

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grouptab/grouptab/internal/dbx"
	"github.com/grouptab/grouptab/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.LoginRecord) error {
	query := `INSERT INTO login_history (id, user_id, at, remote) VALUES ($1, $2, $3, $4)`

	rec.ID = uuid.New().String()
	if _, err := r.db.ExecContext(ctx, query, rec.ID, rec.UserID, rec.At, rec.Remote); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.LoginRecord, error) {
	query := `SELECT id, user_id, at, remote FROM login_history
	          WHERE user_id = $1 ORDER BY at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var recs []*models.LoginRecord
	for rows.Next() {
		rec := &models.LoginRecord{}
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.At, &rec.Remote); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recs, nil
}
