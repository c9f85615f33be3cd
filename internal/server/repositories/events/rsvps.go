package events

import (
	"context"
	"fmt"

	"github.com/grouptab/grouptab/internal/dbx"
	"github.com/grouptab/grouptab/internal/server/models"
)

type PostgresRSVPRepository struct {
	db dbx.DBTX
}

func NewPostgresRSVPRepository(db dbx.DBTX) *PostgresRSVPRepository {
	return &PostgresRSVPRepository{db: db}
}

// Upsert stores the user's answer, replacing any earlier one. Exactly one
// row per (event_id, user_id) is kept.
func (r *PostgresRSVPRepository) Upsert(ctx context.Context, rsvp *models.RSVP) error {
	query := `INSERT INTO rsvps (event_id, user_id, status, responded_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (event_id, user_id)
	          DO UPDATE SET status = EXCLUDED.status, responded_at = EXCLUDED.responded_at`

	_, err := r.db.ExecContext(ctx, query,
		rsvp.EventID, rsvp.UserID, string(rsvp.Status), rsvp.RespondedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRSVPRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.RSVP, error) {
	query := `SELECT event_id, user_id, status, responded_at
	          FROM rsvps WHERE event_id = $1 ORDER BY responded_at`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var rs []*models.RSVP
	for rows.Next() {
		rsvp := &models.RSVP{}
		var status string
		if err := rows.Scan(&rsvp.EventID, &rsvp.UserID, &status, &rsvp.RespondedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rsvp.Status = models.RSVPStatus(status)
		rs = append(rs, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rs, nil
}
