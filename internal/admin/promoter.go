// Package admin grants the admin role to a single existing account.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

// RoleAdmin is the value written under the role key of both metadata columns.
const RoleAdmin = "admin"

// Executor sends one SQL statement to the database.
type Executor interface {
	Exec(ctx context.Context, statement string) error
}

// Promoter merges role=admin into the metadata of the account with a given email.
// A missing account makes the UPDATE match nothing; that is still reported as success.
type Promoter struct {
	exec  Executor
	email string
	log   *slog.Logger
}

// NewPromoter builds a Promoter for email.
func NewPromoter(exec Executor, email string, log *slog.Logger) *Promoter {
	if log == nil {
		log = slog.Default()
	}

	return &Promoter{
		exec:  exec,
		email: email,
		log:   log.With(slog.String("email", email)),
	}
}

// Email returns the account the promoter targets.
func (p *Promoter) Email() string {
	return p.email
}

// Promote executes the role update once.
func (p *Promoter) Promote(ctx context.Context) error {
	p.log.Info("promoting admin user")

	if err := p.exec.Exec(ctx, PromotionSQL(p.email)); err != nil {
		return fmt.Errorf("promote %s: %w", p.email, err)
	}

	return nil
}

// PromotionSQL sets role inside raw_app_meta_data and raw_user_meta_data, keeping every other key.
func PromotionSQL(email string) string {
	role := pq.QuoteLiteral(fmt.Sprintf("%q", RoleAdmin))

	return fmt.Sprintf(`UPDATE auth.users
SET
  raw_app_meta_data = jsonb_set(
    COALESCE(raw_app_meta_data, '{}'),
    '{role}',
    %[1]s
  ),
  raw_user_meta_data = jsonb_set(
    COALESCE(raw_user_meta_data, '{}'),
    '{role}',
    %[1]s
  )
WHERE email = %[2]s;`, role, pq.QuoteLiteral(email))
}

// CheckSQL reads back the role from both metadata columns.
func CheckSQL(email string) string {
	return fmt.Sprintf(`SELECT
  id,
  email,
  raw_app_meta_data->>'role' AS app_role,
  raw_user_meta_data->>'role' AS user_role
FROM auth.users
WHERE email = %s;`, pq.QuoteLiteral(email))
}
