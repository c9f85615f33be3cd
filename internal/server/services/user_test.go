package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/server/auth"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newIssuer() *auth.Issuer {
	return auth.NewIssuer([]byte("k"), 15*time.Minute, 24*time.Hour)
}

func newUserFixture(t *testing.T) (*UserService, *fakeRepoManager, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	return NewUserService(db, rm, newIssuer()), rm, mock, db
}

func register(t *testing.T, s *UserService, name, email, password string) string {
	t.Helper()
	u, err := s.Register(context.Background(), name, email, password)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return u.ID
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, rm, _, db := newUserFixture(t)
	defer db.Close()

	register(t, s, "Alice", "alice@example.com", "pw123456")

	_, err := s.Register(context.Background(), "Imposter", "Alice@Example.com", "other")
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("want common.ErrAlreadyExists, got %v", err)
	}
	if len(rm.users.byID) != 1 {
		t.Fatalf("duplicate registration created a second record")
	}
}

func TestSignIn_Success(t *testing.T) {
	s, rm, mock, db := newUserFixture(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	id := register(t, s, "Alice", "alice@example.com", "pw123456")

	pair, user, err := s.SignIn(context.Background(), "alice@example.com", "pw123456", "10.0.0.1")
	if err != nil {
		t.Fatalf("SignIn error: %v", err)
	}
	if user.ID != id || user.LastLoginAt == nil {
		t.Fatalf("unexpected user after sign-in: %+v", user)
	}

	p, err := newIssuer().ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("access token does not validate: %v", err)
	}
	if p.UserID != id || p.Email != "alice@example.com" {
		t.Fatalf("token principal mismatch: %+v", p)
	}

	if len(rm.logins.recs) != 1 || rm.logins.recs[0].Remote != "10.0.0.1" {
		t.Fatalf("login history not recorded: %+v", rm.logins.recs)
	}
	stored, _ := rm.users.GetByID(context.Background(), id)
	if stored.LastLoginAt == nil {
		t.Fatalf("last_login_at not updated")
	}
}

func TestRecentLogins(t *testing.T) {
	s, _, mock, db := newUserFixture(t)
	defer db.Close()

	id := register(t, s, "Alice", "alice@example.com", "pw123456")
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		if _, _, err := s.SignIn(context.Background(), "alice@example.com", "pw123456", "10.0.0.1"); err != nil {
			t.Fatalf("SignIn error: %v", err)
		}
	}

	recs, err := s.RecentLogins(context.Background(), auth.Principal{UserID: id}, 2)
	if err != nil {
		t.Fatalf("RecentLogins error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.UserID != id {
			t.Fatalf("record for wrong user: %+v", rec)
		}
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	s, rm, _, db := newUserFixture(t)
	defer db.Close()

	id := register(t, s, "Alice", "alice@example.com", "pw123456")

	pair, _, err := s.SignIn(context.Background(), "alice@example.com", "wrong", "")
	if !errors.Is(err, common.ErrLoginFailed) {
		t.Fatalf("want common.ErrLoginFailed, got %v", err)
	}
	if pair != nil {
		t.Fatalf("tokens issued for bad password")
	}
	stored, _ := rm.users.GetByID(context.Background(), id)
	if stored.LastLoginAt != nil {
		t.Fatalf("last_login_at changed on failed sign-in")
	}
}

func TestSignIn_UnknownEmail(t *testing.T) {
	s, _, _, db := newUserFixture(t)
	defer db.Close()

	_, _, err := s.SignIn(context.Background(), "ghost@example.com", "pw", "")
	if !errors.Is(err, common.ErrLoginFailed) {
		t.Fatalf("want common.ErrLoginFailed, got %v", err)
	}
}

func TestRefresh_RoundTrip(t *testing.T) {
	s, _, mock, db := newUserFixture(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	id := register(t, s, "Alice", "alice@example.com", "pw123456")
	pair, _, err := s.SignIn(context.Background(), "alice@example.com", "pw123456", "")
	if err != nil {
		t.Fatalf("SignIn error: %v", err)
	}

	fresh, err := s.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	p, err := newIssuer().ParseAccessToken(fresh.AccessToken)
	if err != nil || p.UserID != id {
		t.Fatalf("refreshed access token invalid: %v %+v", err, p)
	}
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	s, _, mock, db := newUserFixture(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	register(t, s, "Alice", "alice@example.com", "pw123456")
	pair, _, err := s.SignIn(context.Background(), "alice@example.com", "pw123456", "")
	if err != nil {
		t.Fatalf("SignIn error: %v", err)
	}

	_, err = s.Refresh(context.Background(), pair.AccessToken)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("access token accepted for refresh: %v", err)
	}
}

func TestRefresh_DeletedUser(t *testing.T) {
	s, rm, mock, db := newUserFixture(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	id := register(t, s, "Alice", "alice@example.com", "pw123456")
	pair, _, err := s.SignIn(context.Background(), "alice@example.com", "pw123456", "")
	if err != nil {
		t.Fatalf("SignIn error: %v", err)
	}
	if err := rm.users.Delete(context.Background(), id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("deleted user refreshed: %v", err)
	}
}

func TestUpdateProfile_OtherUser(t *testing.T) {
	s, rm, _, db := newUserFixture(t)
	defer db.Close()

	targetID := register(t, s, "Alice", "alice@example.com", "pw123456")
	p := auth.Principal{UserID: "u-other"}

	err := s.UpdateProfile(context.Background(), p, targetID, "Mallory", "m@example.com")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
	stored, _ := rm.users.GetByID(context.Background(), targetID)
	if stored.Name != "Alice" || stored.Email != "alice@example.com" {
		t.Fatalf("target modified: %+v", stored)
	}
}

func TestUpdateProfile_Self(t *testing.T) {
	s, rm, _, db := newUserFixture(t)
	defer db.Close()

	id := register(t, s, "Alice", "alice@example.com", "pw123456")
	p := auth.Principal{UserID: id}

	if err := s.UpdateProfile(context.Background(), p, id, "Alice B", "aliceb@example.com"); err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	stored, _ := rm.users.GetByID(context.Background(), id)
	if stored.Name != "Alice B" || stored.Email != "aliceb@example.com" {
		t.Fatalf("profile not updated: %+v", stored)
	}
}

func TestChangePassword(t *testing.T) {
	s, rm, _, db := newUserFixture(t)
	defer db.Close()

	id := register(t, s, "Alice", "alice@example.com", "oldpass12")
	p := auth.Principal{UserID: id}

	before, _ := rm.users.GetByID(context.Background(), id)
	err := s.ChangePassword(context.Background(), p, id, "wrongcurrent", "newpass12")
	if !errors.Is(err, common.ErrInvalidArgument) {
		t.Fatalf("want common.ErrInvalidArgument, got %v", err)
	}
	after, _ := rm.users.GetByID(context.Background(), id)
	if after.PasswordHash != before.PasswordHash {
		t.Fatalf("hash changed on wrong current password")
	}

	if err := s.ChangePassword(context.Background(), p, id, "oldpass12", "newpass12"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}
	after, _ = rm.users.GetByID(context.Background(), id)
	if !auth.CheckPassword(after.PasswordHash, "newpass12") {
		t.Fatalf("new password does not verify")
	}
	if auth.CheckPassword(after.PasswordHash, "oldpass12") {
		t.Fatalf("old password still verifies")
	}
}

func TestDeleteUser(t *testing.T) {
	s, rm, mock, db := newUserFixture(t)
	defer db.Close()

	id := register(t, s, "Alice", "alice@example.com", "pw123456")
	p := auth.Principal{UserID: id}

	// memberships go with the account
	groups := NewGroupService(db, rm)
	g := createGroup(t, groups, mock, id)

	mock.ExpectBegin()
	mock.ExpectCommit()
	if err := s.DeleteUser(context.Background(), p, id); err != nil {
		t.Fatalf("DeleteUser error: %v", err)
	}
	if _, err := rm.users.GetByID(context.Background(), id); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("user still present after delete: %v", err)
	}
	if _, err := rm.memberships.Get(context.Background(), g.ID, id); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("membership still present after delete: %v", err)
	}
}

func TestDeleteUser_OtherUser(t *testing.T) {
	s, _, _, db := newUserFixture(t)
	defer db.Close()

	targetID := register(t, s, "Alice", "alice@example.com", "pw123456")

	err := s.DeleteUser(context.Background(), auth.Principal{UserID: "u-other"}, targetID)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}
