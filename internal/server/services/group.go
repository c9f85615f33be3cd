package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/dbx"
	"github.com/grouptab/grouptab/internal/server/auth"
	"github.com/grouptab/grouptab/internal/server/models"
	"github.com/grouptab/grouptab/internal/server/repositories/repomanager"
)

// GroupService manages groups and their memberships. Every group-scoped
// read or write checks that the caller is a member first; mutations of the
// group itself are owner-only.
type GroupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewGroupService(db *sql.DB, m repomanager.RepositoryManager) *GroupService {
	return &GroupService{db: db, repomanager: m}
}

// Create inserts the group and the creator's owner membership in one
// transaction, so a group can never exist without its owner row.
func (s *GroupService) Create(ctx context.Context, p auth.Principal, name, description string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrInvalidArgument
	}

	group := &models.Group{Name: name, Description: description, OwnerID: p.UserID}
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		g, err := s.repomanager.Groups(tx).Create(ctx, group)
		if err != nil {
			return fmt.Errorf("error creating group: %w", err)
		}
		m := &models.Membership{GroupID: g.ID, UserID: p.UserID, Role: models.MembershipOwner}
		if _, err := s.repomanager.Memberships(tx).Create(ctx, m); err != nil {
			return fmt.Errorf("error creating owner membership: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return group, nil
}

// Get returns the group if the caller is a member.
func (s *GroupService) Get(ctx context.Context, p auth.Principal, groupID string) (*models.Group, error) {
	if err := s.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	return s.repomanager.Groups(s.db).GetByID(ctx, groupID)
}

// ListMine returns the groups the caller belongs to.
func (s *GroupService) ListMine(ctx context.Context, p auth.Principal) ([]*models.Group, error) {
	return s.repomanager.Groups(s.db).ListByUser(ctx, p.UserID)
}

// Update changes name/description. Owner only.
func (s *GroupService) Update(ctx context.Context, p auth.Principal, groupID, name, description string) error {
	if err := s.requireOwner(ctx, groupID, p.UserID); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return common.ErrInvalidArgument
	}
	return s.repomanager.Groups(s.db).Update(ctx, groupID, name, description)
}

// Delete removes the group and, through cascades, its memberships, ledger,
// plans and events. Owner only.
func (s *GroupService) Delete(ctx context.Context, p auth.Principal, groupID string) error {
	if err := s.requireOwner(ctx, groupID, p.UserID); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Groups(tx).Delete(ctx, groupID)
	})
}

// Join adds the caller as a plain member. Joining twice yields
// common.ErrAlreadyExists from the membership unique index.
func (s *GroupService) Join(ctx context.Context, p auth.Principal, groupID string) (*models.Membership, error) {
	if _, err := s.repomanager.Groups(s.db).GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	m := &models.Membership{GroupID: groupID, UserID: p.UserID, Role: models.MembershipMember}
	return s.repomanager.Memberships(s.db).Create(ctx, m)
}

// Leave removes the caller's membership. The owner cannot leave their own
// group; they delete it instead.
func (s *GroupService) Leave(ctx context.Context, p auth.Principal, groupID string) error {
	m, err := s.repomanager.Memberships(s.db).Get(ctx, groupID, p.UserID)
	if err != nil {
		return err
	}
	if m.Role == models.MembershipOwner {
		return common.ErrInvalidArgument
	}
	return s.repomanager.Memberships(s.db).Delete(ctx, groupID, p.UserID)
}

// ListMembers returns all memberships of the group. Members only.
func (s *GroupService) ListMembers(ctx context.Context, p auth.Principal, groupID string) ([]*models.Membership, error) {
	if err := s.requireMember(ctx, groupID, p.UserID); err != nil {
		return nil, err
	}
	return s.repomanager.Memberships(s.db).ListByGroup(ctx, groupID)
}

// requireMember maps "no membership row" to common.ErrForbidden; the group
// not existing also ends up here, which keeps 404-vs-403 probing useless.
func (s *GroupService) requireMember(ctx context.Context, groupID, userID string) error {
	_, err := s.repomanager.Memberships(s.db).Get(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrForbidden
		}
		return err
	}
	return nil
}

func (s *GroupService) requireOwner(ctx context.Context, groupID, userID string) error {
	m, err := s.repomanager.Memberships(s.db).Get(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrForbidden
		}
		return err
	}
	if m.Role != models.MembershipOwner {
		return common.ErrForbidden
	}
	return nil
}
