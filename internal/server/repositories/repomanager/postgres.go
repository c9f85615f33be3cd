// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/grouptab/grouptab/internal/dbx"
	"github.com/grouptab/grouptab/internal/server/migrations"
	"github.com/grouptab/grouptab/internal/server/repositories/events"
	"github.com/grouptab/grouptab/internal/server/repositories/groups"
	"github.com/grouptab/grouptab/internal/server/repositories/ledger"
	"github.com/grouptab/grouptab/internal/server/repositories/logins"
	"github.com/grouptab/grouptab/internal/server/repositories/plans"
	"github.com/grouptab/grouptab/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Logins(db dbx.DBTX) logins.Repository {
	return logins.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Groups(db dbx.DBTX) groups.Repository {
	return groups.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Memberships(db dbx.DBTX) groups.MembershipRepository {
	return groups.NewPostgresMembershipRepository(db)
}

func (m *PostgresRepositoryManager) Ledger(db dbx.DBTX) ledger.Repository {
	return ledger.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Attachments(db dbx.DBTX) ledger.AttachmentRepository {
	return ledger.NewPostgresAttachmentRepository(db)
}

func (m *PostgresRepositoryManager) Plans(db dbx.DBTX) plans.Repository {
	return plans.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Events(db dbx.DBTX) events.Repository {
	return events.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RSVPs(db dbx.DBTX) events.RSVPRepository {
	return events.NewPostgresRSVPRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
