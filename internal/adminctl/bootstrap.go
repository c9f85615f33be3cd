package adminctl

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/grouptab/grouptab/internal/server/auth"
	"github.com/grouptab/grouptab/internal/server/models"
	"github.com/grouptab/grouptab/internal/server/repositories/repomanager"
)

// Bootstrap prompts for account details and inserts an admin user,
// running migrations first so the tool works against a fresh database.
func Bootstrap(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager, in *bufio.Reader, out io.Writer) (*models.User, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	name, err := GetSimpleText(in, "Admin name", out)
	if err != nil {
		return nil, err
	}
	email, err := GetSimpleText(in, "Admin email", out)
	if err != nil {
		return nil, err
	}
	password, err := GetPassword(out)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(string(password))
	if err != nil {
		return nil, fmt.Errorf("password error: %w", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	created, err := rm.Users(db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating admin: %w", err)
	}

	fmt.Fprintf(out, "created admin %s (%s)\n", created.Email, created.ID)
	return created, nil
}
