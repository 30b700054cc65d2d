// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

// Package validate provides a composable multi-field validation engine.
//
// A Rule checks a single raw field value and yields either an empty string
// (pass) or a human-readable failure message. Rules never return an error
// for bad user input; a non-nil error signals an internal failure such as a
// lookup transport error, and aborts the whole run.
//
// Raw values arrive untyped from the form boundary. A rule that needs a
// particular type checks for it itself and reports a type failure rather
// than trusting its position in the sequence.
package validate

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldToken is the placeholder in rule messages that the engine replaces
// with the humanized field name.
const FieldToken = ":field"

// Rule checks one raw field value. It returns a failure message, or ""
// when the value passes. A non-nil error is an internal failure, not an
// input failure.
type Rule func(ctx context.Context, value any) (string, error)

// RuleSet maps a field name to its ordered rule sequence.
type RuleSet map[string][]Rule

// Report maps a field name to its ordered failure messages. A field absent
// from the report passed all of its rules.
type Report map[string][]string

// Empty returns true when no field failed.
func (r Report) Empty() bool {
	return len(r) == 0
}

// Validate runs every rule of every field in rules against data.
//
// Fields are validated concurrently; the rules of a single field run
// sequentially in declared order. Every rule runs: a failure does not
// suppress later rules for the same field, so the report carries the full
// feedback for one submission in rule order.
func Validate(ctx context.Context, rules RuleSet, data map[string]any) (Report, error) {
	var mu sync.Mutex
	report := Report{}

	g, ctx := errgroup.WithContext(ctx)
	for field, seq := range rules {
		g.Go(func() error {
			value := data[field]
			var msgs []string
			for _, rule := range seq {
				msg, err := rule(ctx, value)
				if err != nil {
					return oops.Code("VALIDATE_RULE_FAILED").
						With("field", field).
						Wrap(err)
				}
				if msg != "" {
					msgs = append(msgs, strings.ReplaceAll(msg, FieldToken, HumanizeField(field)))
				}
			}
			if len(msgs) > 0 {
				mu.Lock()
				report[field] = msgs
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

var firstWordCaser = cases.Title(language.English)

// HumanizeField converts a camelCase field name to a display name:
// "characterName" becomes "Character name".
func HumanizeField(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	words := strings.Fields(b.String())
	if len(words) == 0 {
		return ""
	}
	words[0] = firstWordCaser.String(words[0])
	return strings.Join(words, " ")
}
