// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package account

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Verification token configuration.
const (
	VerificationTokenBytes  = 32                  // 32 bytes = 64 hex chars
	VerificationTokenExpiry = 30 * 24 * time.Hour // 30 days
)

// VerificationToken proves control of an account's email address. It is
// created alongside the account and consumed exactly once by the
// confirmation flow.
type VerificationToken struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewVerificationToken creates a VerificationToken for an account.
func NewVerificationToken(accountID ulid.ULID, tokenHash string, expiresAt time.Time) (*VerificationToken, error) {
	if accountID.IsZero() {
		return nil, oops.Code("VERIFY_INVALID_ACCOUNT").Errorf("account id cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("VERIFY_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if !expiresAt.After(time.Now()) {
		return nil, oops.Code("VERIFY_INVALID_EXPIRY").Errorf("expiry must be in the future")
	}
	return &VerificationToken{
		ID:        ulid.Make(),
		AccountID: accountID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the token has expired.
func (t *VerificationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// GenerateVerificationToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error). The plaintext goes into
// the verification email; only the hash is persisted.
func GenerateVerificationToken() (token, hash string, err error) {
	tokenBytes := make([]byte, VerificationTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("VERIFY_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashVerificationToken(token)

	return token, hash, nil
}

// VerifyVerificationToken checks a plaintext token against a stored hash
// in constant time.
func VerifyVerificationToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	computed := HashVerificationToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// HashVerificationToken computes the hex-encoded SHA256 hash of a token.
func HashVerificationToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerificationRepository manages verification token persistence.
type VerificationRepository interface {
	// GetByTokenHash retrieves a token by its hash.
	// Returns ErrNotFound if no token matches.
	GetByTokenHash(ctx context.Context, tokenHash string) (*VerificationToken, error)

	// DeleteByAccount removes all tokens for an account.
	DeleteByAccount(ctx context.Context, accountID ulid.ULID) error
}
