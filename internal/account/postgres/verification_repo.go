// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/emberwake/emberwake/internal/account"
)

// VerificationRepository implements account.VerificationRepository using
// PostgreSQL.
type VerificationRepository struct {
	pool poolIface
}

// NewVerificationRepository creates a new VerificationRepository.
func NewVerificationRepository(pool poolIface) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

// GetByTokenHash retrieves a verification token by its hash.
func (r *VerificationRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*account.VerificationToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, account_id, token_hash, expires_at, created_at
		FROM verification_tokens
		WHERE token_hash = $1
	`, tokenHash)

	var (
		token     account.VerificationToken
		idStr     string
		acctIDStr string
	)
	err := row.Scan(&idStr, &acctIDStr, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("VERIFY_TOKEN_NOT_FOUND").Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("VERIFY_GET_BY_HASH_FAILED").
			With("operation", "get verification token by hash").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("VERIFY_SCAN_FAILED").
			With("operation", "parse token id").
			Wrap(err)
	}
	acctID, err := ulid.Parse(acctIDStr)
	if err != nil {
		return nil, oops.Code("VERIFY_SCAN_FAILED").
			With("operation", "parse account id").
			Wrap(err)
	}
	token.ID = id
	token.AccountID = acctID
	return &token, nil
}

// DeleteByAccount removes all verification tokens for an account.
func (r *VerificationRepository) DeleteByAccount(ctx context.Context, accountID ulid.ULID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM verification_tokens WHERE account_id = $1
	`, accountID.String())
	if err != nil {
		return oops.Code("VERIFY_DELETE_FAILED").
			With("operation", "delete verification tokens by account").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}
