package events

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const eventColumns = `id, group_id, title, location, starts_at, created_by, created_at`

func (r *PostgresRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `INSERT INTO events (id, group_id, title, location, starts_at, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`

	event.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, query,
		event.ID, event.GroupID, event.Title, event.Location,
		event.StartsAt, event.CreatedBy).
		Scan(&event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return event, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&e.ID, &e.GroupID, &e.Title, &e.Location, &e.StartsAt, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID string) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE group_id = $1 ORDER BY starts_at`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var es []*models.Event
	for rows.Next() {
		e := &models.Event{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Title, &e.Location,
			&e.StartsAt, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		es = append(es, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return es, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
