// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package account

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Sex is a character's sex attribute.
type Sex string

// Canonical sex values.
const (
	SexFemale  Sex = "female"
	SexMale    Sex = "male"
	SexNeutral Sex = "neutral"
)

// ParseSex parses a raw submission value into a canonical Sex.
func ParseSex(raw string) (Sex, error) {
	switch Sex(strings.ToLower(strings.TrimSpace(raw))) {
	case SexFemale:
		return SexFemale, nil
	case SexMale:
		return SexMale, nil
	case SexNeutral:
		return SexNeutral, nil
	}
	return "", oops.Code("CHARACTER_INVALID_SEX").
		With("value", raw).
		Errorf("unknown sex %q", raw)
}

// Pronoun is a character's pronoun set.
type Pronoun string

// Canonical pronoun values.
const (
	PronounShe  Pronoun = "she"
	PronounHe   Pronoun = "he"
	PronounThey Pronoun = "they"
)

// ParsePronoun parses a raw submission value into a canonical Pronoun.
// An empty value defaults based on sex.
func ParsePronoun(raw string, sex Sex) Pronoun {
	switch Pronoun(strings.ToLower(strings.TrimSpace(raw))) {
	case PronounShe:
		return PronounShe
	case PronounHe:
		return PronounHe
	case PronounThey:
		return PronounThey
	}
	return DefaultPronoun(sex)
}

// DefaultPronoun returns the pronoun implied by sex when none was chosen.
func DefaultPronoun(sex Sex) Pronoun {
	switch sex {
	case SexFemale:
		return PronounShe
	case SexMale:
		return PronounHe
	default:
		return PronounThey
	}
}

// Character represents a player character. The name is globally unique,
// case-sensitive as stored. Each account's first character is its main.
type Character struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	Name      string
	Sex       Sex
	Pronoun   Pronoun
	Main      bool
	Health    int
	Stamina   int
	Gold      int
	CreatedAt time.Time
}

// CharacterInput is the full creation payload for a new character,
// including starting attributes derived from game-rule data.
type CharacterInput struct {
	Name    string
	Sex     Sex
	Pronoun Pronoun
	Health  int
	Stamina int
	Gold    int
}

// CharacterSeed is the player-chosen part of a new character.
type CharacterSeed struct {
	Name    string
	Sex     Sex
	Pronoun Pronoun
}

// CharacterFactory derives the full creation payload for a new character.
type CharacterFactory interface {
	Generate(ctx context.Context, seed CharacterSeed) (CharacterInput, error)
}

// StartingStats holds the game-rule data consulted when rolling a new
// character.
type StartingStats struct {
	Health  int
	Stamina int
	Gold    int
}

// DefaultStartingStats are the stats every fresh character begins with.
var DefaultStartingStats = StartingStats{
	Health:  100,
	Stamina: 50,
	Gold:    25,
}

// StandardFactory implements CharacterFactory from a static stats table.
type StandardFactory struct {
	stats StartingStats
}

// NewStandardFactory creates a StandardFactory.
func NewStandardFactory(stats StartingStats) *StandardFactory {
	return &StandardFactory{stats: stats}
}

// Generate derives the creation payload for a seed.
func (f *StandardFactory) Generate(_ context.Context, seed CharacterSeed) (CharacterInput, error) {
	if seed.Name == "" {
		return CharacterInput{}, oops.Code("CHARACTER_INVALID_SEED").Errorf("character name cannot be empty")
	}
	return CharacterInput{
		Name:    seed.Name,
		Sex:     seed.Sex,
		Pronoun: seed.Pronoun,
		Health:  f.stats.Health,
		Stamina: f.stats.Stamina,
		Gold:    f.stats.Gold,
	}, nil
}

// NewCharacter creates a Character for an account from a creation payload.
func NewCharacter(accountID ulid.ULID, input CharacterInput, main bool) (*Character, error) {
	if accountID.IsZero() {
		return nil, oops.Code("CHARACTER_INVALID_ACCOUNT").Errorf("account id cannot be zero")
	}
	if input.Name == "" {
		return nil, oops.Code("CHARACTER_INVALID_NAME").Errorf("character name cannot be empty")
	}
	return &Character{
		ID:        ulid.Make(),
		AccountID: accountID,
		Name:      input.Name,
		Sex:       input.Sex,
		Pronoun:   input.Pronoun,
		Main:      main,
		Health:    input.Health,
		Stamina:   input.Stamina,
		Gold:      input.Gold,
		CreatedAt: time.Now(),
	}, nil
}

// CharacterRepository manages character persistence.
type CharacterRepository interface {
	// GetByName retrieves a character by exact name.
	// Returns ErrNotFound if no character has the given name.
	GetByName(ctx context.Context, name string) (*Character, error)

	// CountByAccount returns the number of characters owned by an account.
	CountByAccount(ctx context.Context, accountID ulid.ULID) (int, error)
}

// MonsterRepository queries non-player entities sharing the character
// name namespace. It satisfies the name policy's lookup contract.
type MonsterRepository interface {
	// CountByName returns how many monsters carry the given name
	// (case-insensitive).
	CountByName(ctx context.Context, name string) (int, error)
}
