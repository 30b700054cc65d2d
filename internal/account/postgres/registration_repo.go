// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/emberwake/emberwake/internal/account"
)

// RegistrationRepository implements account.RegistrationRepository using
// PostgreSQL. The unique indexes on accounts and characters are the
// final authority for uniqueness; the service's pre-checks only improve
// the error message in the common case.
type RegistrationRepository struct {
	pool poolIface
}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository(pool poolIface) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// CreateBundle persists the account, its main character, and its
// verification token in one transaction. A unique-constraint violation
// rolls everything back and maps to the matching conflict error.
func (r *RegistrationRepository) CreateBundle(ctx context.Context, bundle account.RegistrationBundle) (*account.CreatedBundle, error) {
	if bundle.Account == nil || bundle.Character == nil || bundle.Token == nil {
		return nil, oops.Code("REGISTRATION_INVALID_BUNDLE").
			Errorf("bundle must contain an account, a character, and a token")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, oops.Code("REGISTRATION_TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	acct := bundle.Account
	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		acct.ID.String(),
		acct.Email,
		acct.PasswordHash,
		acct.EmailVerified,
		acct.CreatedAt,
		acct.UpdatedAt,
	)
	if err != nil {
		return nil, mapConstraintError(err, "insert account", acct.Email)
	}

	char := bundle.Character
	_, err = tx.Exec(ctx, `
		INSERT INTO characters (id, account_id, name, sex, pronoun, main, health, stamina, gold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		char.ID.String(),
		char.AccountID.String(),
		char.Name,
		string(char.Sex),
		string(char.Pronoun),
		char.Main,
		char.Health,
		char.Stamina,
		char.Gold,
		char.CreatedAt,
	)
	if err != nil {
		return nil, mapConstraintError(err, "insert character", char.Name)
	}

	token := bundle.Token
	_, err = tx.Exec(ctx, `
		INSERT INTO verification_tokens (id, account_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		token.ID.String(),
		token.AccountID.String(),
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return nil, mapConstraintError(err, "insert verification token", "")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.Code("REGISTRATION_TX_COMMIT_FAILED").Wrap(err)
	}

	return &account.CreatedBundle{Account: acct, Token: token}, nil
}

// mapConstraintError converts a unique-constraint violation into the
// conflict sentinel named by the violated constraint. Any other error
// becomes an opaque persistence failure.
func mapConstraintError(err error, operation, subject string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "accounts_email"):
			return oops.Code("REGISTRATION_EMAIL_TAKEN").
				With("email", subject).
				Wrap(account.ErrEmailTaken)
		case strings.Contains(pgErr.ConstraintName, "characters_name"):
			return oops.Code("REGISTRATION_NAME_TAKEN").
				With("name", subject).
				Wrap(account.ErrCharacterNameTaken)
		}
	}
	return oops.Code("REGISTRATION_CREATE_FAILED").
		With("operation", operation).
		Wrap(err)
}
