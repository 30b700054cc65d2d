// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

// Package names enforces the character-name policy.
//
// The policy is a composite check applied in a fixed order, returning on
// the first failure: type, length, capitalization, blocked prefixes,
// blocked phrases, whitespace, character set, and finally a collision
// check against the monster-name namespace.
package names

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/samber/oops"

	"github.com/emberwake/emberwake/internal/validate"
)

// Name length limits.
const (
	MinLength = 3
	MaxLength = 20
)

// charsetRegex matches the lowercased form of an acceptable name:
// letters, hyphens, spaces, and apostrophes only.
var charsetRegex = regexp.MustCompile(`^[a-z- ']+$`)

// MonsterLookup checks the shared name namespace for non-player entities.
type MonsterLookup interface {
	// CountByName returns how many monsters carry the given name
	// (case-insensitive).
	CountByName(ctx context.Context, name string) (int, error)
}

// Config holds the policy's blocklists. Both lists are matched
// case-insensitively and must be provided in lowercase.
type Config struct {
	// BlockedPrefixes rejects names starting with staff-impersonation
	// prefixes or stray punctuation.
	BlockedPrefixes []string

	// BlockedPhrases rejects names containing staff titles, repeated
	// punctuation, or the product's own name anywhere in the name.
	BlockedPhrases []string
}

// DefaultConfig returns the standard blocklists. productName is blocked
// as a phrase so players cannot impersonate the game itself.
func DefaultConfig(productName string) Config {
	return Config{
		BlockedPrefixes: []string{"gm", "admin", "mod", "-", "'"},
		BlockedPhrases: []string{
			"gamemaster",
			"game master",
			"admin",
			"moderator",
			"staff",
			"--",
			"''",
			strings.ToLower(productName),
		},
	}
}

// Messages holds the failure message for each policy outcome. Messages
// may carry the :field token for the validation engine to substitute.
type Messages struct {
	WrongType string
	Length    string
	Casing    string
	Blocked   string
	Malformed string
	Taken     string
}

// Policy validates character names against the configured rules.
type Policy struct {
	cfg      Config
	msgs     Messages
	monsters MonsterLookup
}

// NewPolicy creates a Policy. The blocklists in cfg are injected rather
// than read from package state so the policy can be tested and
// substituted independently.
func NewPolicy(cfg Config, msgs Messages, monsters MonsterLookup) *Policy {
	return &Policy{cfg: cfg, msgs: msgs, monsters: monsters}
}

// Check applies the policy to a raw field value. It returns the first
// failure's message, or "" when the name is acceptable. A non-nil error
// means the monster lookup failed, not that the name is invalid.
func (p *Policy) Check(ctx context.Context, value any) (string, error) {
	name, ok := value.(string)
	if !ok {
		return p.msgs.WrongType, nil
	}

	if len(name) < MinLength || len(name) > MaxLength {
		return p.msgs.Length, nil
	}

	if name != TitleCase(name) {
		return p.msgs.Casing, nil
	}

	lower := strings.ToLower(name)
	for _, prefix := range p.cfg.BlockedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return p.msgs.Blocked, nil
		}
	}
	for _, phrase := range p.cfg.BlockedPhrases {
		if strings.Contains(lower, phrase) {
			return p.msgs.Blocked, nil
		}
	}

	if name != strings.TrimSpace(name) {
		return p.msgs.Malformed, nil
	}

	if !charsetRegex.MatchString(lower) {
		return p.msgs.Malformed, nil
	}

	count, err := p.monsters.CountByName(ctx, name)
	if err != nil {
		return "", oops.Code("NAME_MONSTER_LOOKUP_FAILED").
			With("name", name).
			Wrap(err)
	}
	if count > 0 {
		return p.msgs.Taken, nil
	}

	return "", nil
}

// Rule adapts the policy to the validation engine's rule contract.
func (p *Policy) Rule() validate.Rule {
	return p.Check
}

// TitleCase converts a name to capitalized-word form: the first letter of
// each space-separated word uppercased, the rest lowercased.
//
// Example: "aLaRiC" -> "Alaric", "jOhN sMiTh" -> "John Smith".
func TitleCase(name string) string {
	words := strings.Split(name, " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
