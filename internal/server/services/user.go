// Package services contains server-side business logic. This file implements
// UserService: registration, sign-in, token refresh, and account management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/dbx"
	"github.com/grouptab/grouptab/internal/server/auth"
	"github.com/grouptab/grouptab/internal/server/models"
	"github.com/grouptab/grouptab/internal/server/repositories/repomanager"
)

// UserService provides account operations:
//   - Register: create users
//   - SignIn: verify credentials, record the login, and mint tokens
//   - Refresh: mint a new token pair from a valid refresh token
//   - profile/password updates and account deletion (self-only)
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
}

// NewUserService constructs a UserService using repositories and the token
// issuer.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer) *UserService {
	return &UserService{db: db, repomanager: m, issuer: issuer}
}

// Register creates a new member account. A duplicate email surfaces as
// common.ErrAlreadyExists; the storage unique index is authoritative, so
// there is no read-then-insert race.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, common.ErrInvalidArgument
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrInvalidArgument
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: models.RoleMember}
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// SignIn verifies credentials and, on success, bumps last_login_at and
// appends a login-history row in one transaction before minting tokens.
// Unknown email and wrong password both return common.ErrLoginFailed so the
// response does not reveal which accounts exist.
func (s *UserService) SignIn(ctx context.Context, email, password, remote string) (*auth.TokenPair, *models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrLoginFailed
		}
		return nil, nil, common.ErrorInternal
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, common.ErrLoginFailed
	}

	now := time.Now()
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdateLastLogin(ctx, user.ID, now); err != nil {
			return fmt.Errorf("error updating last login: %w", err)
		}
		rec := &models.LoginRecord{UserID: user.ID, At: now, Remote: remote}
		if err := s.repomanager.Logins(tx).Create(ctx, rec); err != nil {
			return fmt.Errorf("error recording login: %w", err)
		}
		return nil
	}); err != nil {
		return nil, nil, err
	}
	user.LastLoginAt = &now

	pair, err := s.issuer.IssueTokenPair(principalOf(user))
	if err != nil {
		return nil, nil, common.ErrorInternal
	}
	return pair, user, nil
}

// Refresh validates a refresh token and mints a fresh pair. The user is
// re-loaded so a deleted account cannot refresh and role changes take
// effect on the next rotation.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	p, err := s.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}

	pair, err := s.issuer.IssueTokenPair(principalOf(user))
	if err != nil {
		return nil, common.ErrorInternal
	}
	return pair, nil
}

// GetCurrentUser loads the full account record for the principal.
func (s *UserService) GetCurrentUser(ctx context.Context, p auth.Principal) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

const maxLoginHistory = 50

// RecentLogins returns the principal's newest login-history rows.
func (s *UserService) RecentLogins(ctx context.Context, p auth.Principal, limit int) ([]*models.LoginRecord, error) {
	if limit <= 0 || limit > maxLoginHistory {
		limit = maxLoginHistory
	}
	return s.repomanager.Logins(s.db).ListByUser(ctx, p.UserID, limit)
}

// UpdateProfile changes the target user's name and email. Self-only: a
// principal may modify no account but their own.
func (s *UserService) UpdateProfile(ctx context.Context, p auth.Principal, targetID, name, email string) error {
	if p.UserID != targetID {
		return common.ErrorUnauthorized
	}
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return common.ErrInvalidArgument
	}
	return s.repomanager.Users(s.db).UpdateProfile(ctx, targetID, name, email)
}

// ChangePassword replaces the target's password hash after verifying the
// current password. Self-only.
func (s *UserService) ChangePassword(ctx context.Context, p auth.Principal, targetID, current, next string) error {
	if p.UserID != targetID {
		return common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return common.ErrInvalidArgument
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return common.ErrInvalidArgument
	}
	return s.repomanager.Users(s.db).UpdatePasswordHash(ctx, targetID, hash)
}

// DeleteUser removes the account. Memberships, login history, RSVPs and
// authored rows go with it through the schema's ON DELETE CASCADE, all
// inside one transaction. Self-only.
func (s *UserService) DeleteUser(ctx context.Context, p auth.Principal, targetID string) error {
	if p.UserID != targetID {
		return common.ErrorUnauthorized
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).Delete(ctx, targetID)
	})
}

func principalOf(u *models.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}
