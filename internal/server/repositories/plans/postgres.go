package plans

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

const planColumns = `id, group_id, title, target_amount, starts_on, ends_on, created_by, created_at`

func (r *PostgresRepository) Create(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	query := `INSERT INTO plans (id, group_id, title, target_amount, starts_on, ends_on, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at`

	plan.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, query,
		plan.ID, plan.GroupID, plan.Title, plan.TargetAmount,
		plan.StartsOn, plan.EndsOn, plan.CreatedBy).
		Scan(&plan.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return plan, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`

	p := &models.Plan{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.GroupID, &p.Title, &p.TargetAmount,
			&p.StartsOn, &p.EndsOn, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID string) ([]*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE group_id = $1 ORDER BY starts_on`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ps []*models.Plan
	for rows.Next() {
		p := &models.Plan{}
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Title, &p.TargetAmount,
			&p.StartsOn, &p.EndsOn, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ps = append(ps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ps, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM plans WHERE id = $1`
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
