package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

const entryColumns = `id, group_id, paid_by, amount, category, memo, spent_at, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	query := `INSERT INTO ledger_entries (id, group_id, paid_by, amount, category, memo, spent_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`

	entry.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.GroupID, entry.PaidBy, entry.Amount,
		entry.Category, entry.Memo, entry.SpentAt).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1`
	return scanEntry(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID string, from, to time.Time) ([]*models.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries
	          WHERE group_id = $1 AND spent_at >= $2 AND spent_at < $3
	          ORDER BY spent_at DESC`

	rows, err := r.db.QueryContext(ctx, query, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		e := &models.LedgerEntry{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Amount,
			&e.Category, &e.Memo, &e.SpentAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entries, nil
}

func (r *PostgresRepository) Update(ctx context.Context, entry *models.LedgerEntry) error {
	query := `UPDATE ledger_entries
	          SET amount = $2, category = $3, memo = $4, spent_at = $5, updated_at = now()
	          WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Amount, entry.Category, entry.Memo, entry.SpentAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM ledger_entries WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// Summarize aggregates spending in [from, to). The by-category breakdown
// and the grand total come from the same scan so they cannot disagree.
func (r *PostgresRepository) Summarize(ctx context.Context, groupID string, from, to time.Time) (*models.LedgerSummary, error) {
	query := `SELECT category, COALESCE(SUM(amount), 0)
	          FROM ledger_entries
	          WHERE group_id = $1 AND spent_at >= $2 AND spent_at < $3
	          GROUP BY category`

	rows, err := r.db.QueryContext(ctx, query, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	summary := &models.LedgerSummary{ByCategory: map[string]int64{}}
	for rows.Next() {
		var category string
		var total int64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		summary.ByCategory[category] = total
		summary.Total += total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return summary, nil
}

func scanEntry(row *sql.Row) (*models.LedgerEntry, error) {
	e := &models.LedgerEntry{}
	err := row.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Amount,
		&e.Category, &e.Memo, &e.SpentAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
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
