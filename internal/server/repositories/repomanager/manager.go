package repomanager

import (
	"context"
	"database/sql"

	"github.com/grouptab/grouptab/internal/dbx"
	"github.com/grouptab/grouptab/internal/server/repositories/events"
	"github.com/grouptab/grouptab/internal/server/repositories/groups"
	"github.com/grouptab/grouptab/internal/server/repositories/ledger"
	"github.com/grouptab/grouptab/internal/server/repositories/logins"
	"github.com/grouptab/grouptab/internal/server/repositories/plans"
	"github.com/grouptab/grouptab/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Logins(db dbx.DBTX) logins.Repository
	Groups(db dbx.DBTX) groups.Repository
	Memberships(db dbx.DBTX) groups.MembershipRepository
	Ledger(db dbx.DBTX) ledger.Repository
	Attachments(db dbx.DBTX) ledger.AttachmentRepository
	Plans(db dbx.DBTX) plans.Repository
	Events(db dbx.DBTX) events.Repository
	RSVPs(db dbx.DBTX) events.RSVPRepository
}
