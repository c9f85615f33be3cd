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

type PostgresMembershipRepository struct {
	db dbx.DBTX
}

func NewPostgresMembershipRepository(db dbx.DBTX) *PostgresMembershipRepository {
	return &PostgresMembershipRepository{db: db}
}

// Create inserts a membership row. Joining twice surfaces as
// common.ErrAlreadyExists via the unique index on (group_id, user_id).
func (r *PostgresMembershipRepository) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	query := `INSERT INTO memberships (id, group_id, user_id, role)
	          VALUES ($1, $2, $3, $4)
	          RETURNING joined_at`

	m.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, query, m.ID, m.GroupID, m.UserID, string(m.Role)).
		Scan(&m.JoinedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresMembershipRepository) Get(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	query := `SELECT id, group_id, user_id, role, joined_at
	          FROM memberships WHERE group_id = $1 AND user_id = $2`

	m := &models.Membership{}
	var role string
	err := r.db.QueryRowContext(ctx, query, groupID, userID).
		Scan(&m.ID, &m.GroupID, &m.UserID, &role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	m.Role = models.MembershipRole(role)
	return m, nil
}

func (r *PostgresMembershipRepository) ListByGroup(ctx context.Context, groupID string) ([]*models.Membership, error) {
	query := `SELECT id, group_id, user_id, role, joined_at
	          FROM memberships WHERE group_id = $1 ORDER BY joined_at`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ms []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		var role string
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.Role = models.MembershipRole(role)
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ms, nil
}

func (r *PostgresMembershipRepository) Delete(ctx context.Context, groupID, userID string) error {
	query := `DELETE FROM memberships WHERE group_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}
