package groups

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

const groupColumns = `id, name, description, owner_id, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, group *models.Group) (*models.Group, error) {
	query := `INSERT INTO groups (id, name, description, owner_id)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at, updated_at`

	group.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, query,
		group.ID, group.Name, group.Description, group.OwnerID).
		Scan(&group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return group, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	return scanGroup(r.db.QueryRowContext(ctx, query, id))
}

// ListByUser returns groups the user belongs to, newest first. Membership
// is the authoritative join, so owners appear through their owner row.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	query := `SELECT g.id, g.name, g.description, g.owner_id, g.created_at, g.updated_at
	          FROM groups g
	          JOIN memberships m ON m.group_id = g.id
	          WHERE m.user_id = $1
	          ORDER BY g.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return groups, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, name, description string) error {
	query := `UPDATE groups SET name = $2, description = $3, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, name, description)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM groups WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func scanGroup(row *sql.Row) (*models.Group, error) {
	g := &models.Group{}
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
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
