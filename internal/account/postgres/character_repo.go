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

// CharacterRepository implements account.CharacterRepository using PostgreSQL.
type CharacterRepository struct {
	pool poolIface
}

// NewCharacterRepository creates a new CharacterRepository.
func NewCharacterRepository(pool poolIface) *CharacterRepository {
	return &CharacterRepository{pool: pool}
}

const characterColumns = `id, account_id, name, sex, pronoun, main, health, stamina, gold, created_at`

// GetByName retrieves a character by exact name.
func (r *CharacterRepository) GetByName(ctx context.Context, name string) (*account.Character, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+characterColumns+`
		FROM characters
		WHERE name = $1
	`, name)

	char, err := scanCharacter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CHARACTER_NOT_FOUND").
			With("name", name).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CHARACTER_GET_BY_NAME_FAILED").
			With("operation", "get character by name").
			With("name", name).
			Wrap(err)
	}
	return char, nil
}

// CountByAccount returns the number of characters owned by an account.
func (r *CharacterRepository) CountByAccount(ctx context.Context, accountID ulid.ULID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM characters WHERE account_id = $1
	`, accountID.String()).Scan(&count)
	if err != nil {
		return 0, oops.Code("CHARACTER_COUNT_FAILED").
			With("operation", "count characters by account").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return count, nil
}

// scanCharacter scans one character row.
func scanCharacter(row pgx.Row) (*account.Character, error) {
	var (
		char      account.Character
		idStr     string
		acctIDStr string
	)
	if err := row.Scan(
		&idStr,
		&acctIDStr,
		&char.Name,
		&char.Sex,
		&char.Pronoun,
		&char.Main,
		&char.Health,
		&char.Stamina,
		&char.Gold,
		&char.CreatedAt,
	); err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("CHARACTER_SCAN_FAILED").
			With("operation", "parse character id").
			Wrap(err)
	}
	acctID, err := ulid.Parse(acctIDStr)
	if err != nil {
		return nil, oops.Code("CHARACTER_SCAN_FAILED").
			With("operation", "parse account id").
			Wrap(err)
	}
	char.ID = id
	char.AccountID = acctID
	return &char, nil
}

// MonsterRepository implements account.MonsterRepository using PostgreSQL.
type MonsterRepository struct {
	pool poolIface
}

// NewMonsterRepository creates a new MonsterRepository.
func NewMonsterRepository(pool poolIface) *MonsterRepository {
	return &MonsterRepository{pool: pool}
}

// CountByName returns how many monsters carry the given name
// (case-insensitive; monsters share the character name namespace).
func (r *MonsterRepository) CountByName(ctx context.Context, name string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM monsters WHERE LOWER(name) = LOWER($1)
	`, name).Scan(&count)
	if err != nil {
		return 0, oops.Code("MONSTER_COUNT_FAILED").
			With("operation", "count monsters by name").
			With("name", name).
			Wrap(err)
	}
	return count, nil
}
