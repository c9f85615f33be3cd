package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/server/auth"
	"github.com/grouptab/grouptab/internal/server/models"
	"github.com/grouptab/grouptab/internal/server/repositories/repomanager"
)

// PlanProgress pairs a plan with the ledger total spent inside its date
// range. Progress is always derived, never stored.
type PlanProgress struct {
	Plan  *models.Plan
	Spent int64
}

// PlanService manages group financial plans.
type PlanService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	groups      *GroupService
	ledger      *LedgerService
}

func NewPlanService(db *sql.DB, m repomanager.RepositoryManager, groups *GroupService, ledger *LedgerService) *PlanService {
	return &PlanService{db: db, repomanager: m, groups: groups, ledger: ledger}
}

// Create adds a plan for the group. Members only. EndsOn must not precede
// StartsOn and the target must be positive.
func (s *PlanService) Create(ctx context.Context, p auth.Principal, groupID, title string, target int64, startsOn, endsOn time.Time) (*models.Plan, error) {
	if err := s.groups.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" || target <= 0 || endsOn.Before(startsOn) {
		return nil, common.ErrInvalidArgument
	}

	plan := &models.Plan{
		GroupID:      groupID,
		Title:        title,
		TargetAmount: target,
		StartsOn:     startsOn,
		EndsOn:       endsOn,
		CreatedBy:    p.UserID,
	}
	return s.repomanager.Plans(s.db).Create(ctx, plan)
}

// List returns the group's plans with spending progress. Members only.
func (s *PlanService) List(ctx context.Context, p auth.Principal, groupID string) ([]*PlanProgress, error) {
	if err := s.groups.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	plans, err := s.repomanager.Plans(s.db).ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	out := make([]*PlanProgress, 0, len(plans))
	for _, plan := range plans {
		spent, err := s.ledger.RangeTotal(ctx, groupID, plan.StartsOn, plan.EndsOn)
		if err != nil {
			return nil, err
		}
		out = append(out, &PlanProgress{Plan: plan, Spent: spent})
	}
	return out, nil
}

// Delete removes a plan. Allowed for its creator or the group owner.
func (s *PlanService) Delete(ctx context.Context, p auth.Principal, groupID, planID string) error {
	if err := s.groups.requireMember(ctx, groupID, p.UserID); err != nil {
		return err
	}
	plan, err := s.repomanager.Plans(s.db).GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan.GroupID != groupID {
		return common.ErrorNotFound
	}
	if plan.CreatedBy != p.UserID {
		if err := s.groups.requireOwner(ctx, groupID, p.UserID); err != nil {
			return err
		}
	}
	return s.repomanager.Plans(s.db).Delete(ctx, planID)
}
