package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/dbx"
	"github.com/grouptab/grouptab/internal/server/auth"
	"github.com/grouptab/grouptab/internal/server/models"
	"github.com/grouptab/grouptab/internal/server/repositories/repomanager"
)

// LedgerService manages the group account book. Amounts are minor currency
// units; positive for spending, negative for refunds.
type LedgerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	groups      *GroupService
}

func NewLedgerService(db *sql.DB, m repomanager.RepositoryManager, groups *GroupService) *LedgerService {
	return &LedgerService{db: db, repomanager: m, groups: groups}
}

// Add appends an entry to the group's book, paid by the caller.
func (s *LedgerService) Add(ctx context.Context, p auth.Principal, groupID string, amount int64, category, memo string, spentAt time.Time) (*models.LedgerEntry, error) {
	if err := s.groups.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	if amount == 0 || spentAt.IsZero() {
		return nil, common.ErrInvalidArgument
	}

	entry := &models.LedgerEntry{
		GroupID:  groupID,
		PaidBy:   p.UserID,
		Amount:   amount,
		Category: category,
		Memo:     memo,
		SpentAt:  spentAt,
	}
	return s.repomanager.Ledger(s.db).Create(ctx, entry)
}

// List returns entries in [from, to), newest first. Members only.
func (s *LedgerService) List(ctx context.Context, p auth.Principal, groupID string, from, to time.Time) ([]*models.LedgerEntry, error) {
	if err := s.groups.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	return s.repomanager.Ledger(s.db).ListByGroup(ctx, groupID, from, to)
}

// Update rewrites an entry's mutable fields. Allowed for the entry's payer
// or the group owner.
func (s *LedgerService) Update(ctx context.Context, p auth.Principal, groupID, entryID string, amount int64, category, memo string, spentAt time.Time) (*models.LedgerEntry, error) {
	entry, err := s.loadEntryForWrite(ctx, p, groupID, entryID)
	if err != nil {
		return nil, err
	}
	if amount == 0 || spentAt.IsZero() {
		return nil, common.ErrInvalidArgument
	}

	entry.Amount = amount
	entry.Category = category
	entry.Memo = memo
	entry.SpentAt = spentAt
	if err := s.repomanager.Ledger(s.db).Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Remove deletes an entry (and its attachment, via cascade). Allowed for
// the payer or the group owner.
func (s *LedgerService) Remove(ctx context.Context, p auth.Principal, groupID, entryID string) error {
	if _, err := s.loadEntryForWrite(ctx, p, groupID, entryID); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Ledger(tx).Delete(ctx, entryID)
	})
}

// MonthSummary aggregates the month containing day: total plus per-category
// totals. Members only.
func (s *LedgerService) MonthSummary(ctx context.Context, p auth.Principal, groupID string, day time.Time) (*models.LedgerSummary, error) {
	if err := s.groups.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	from := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 1, 0)
	return s.repomanager.Ledger(s.db).Summarize(ctx, groupID, from, to)
}

// RangeTotal sums entries in [from, to). Used for plan progress.
func (s *LedgerService) RangeTotal(ctx context.Context, groupID string, from, to time.Time) (int64, error) {
	summary, err := s.repomanager.Ledger(s.db).Summarize(ctx, groupID, from, to)
	if err != nil {
		return 0, err
	}
	return summary.Total, nil
}

// loadEntryForRead fetches the entry for a group member. An entry addressed
// through the wrong group reads as missing.
func (s *LedgerService) loadEntryForRead(ctx context.Context, p auth.Principal, groupID, entryID string) (*models.LedgerEntry, error) {
	if err := s.groups.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	entry, err := s.repomanager.Ledger(s.db).GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.GroupID != groupID {
		return nil, common.ErrorNotFound
	}
	return entry, nil
}

// loadEntryForWrite fetches the entry and checks write rights: the caller
// must be a member, and either the payer or the group owner.
func (s *LedgerService) loadEntryForWrite(ctx context.Context, p auth.Principal, groupID, entryID string) (*models.LedgerEntry, error) {
	entry, err := s.loadEntryForRead(ctx, p, groupID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.PaidBy != p.UserID {
		if err := s.groups.requireOwner(ctx, groupID, p.UserID); err != nil {
			return nil, err
		}
	}
	return entry, nil
}
