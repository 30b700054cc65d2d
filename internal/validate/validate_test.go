// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package validate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwake/emberwake/internal/validate"
)

// staticRule returns a fixed message regardless of the value.
func staticRule(msg string) validate.Rule {
	return func(_ context.Context, _ any) (string, error) {
		return msg, nil
	}
}

// passRule always passes.
func passRule() validate.Rule {
	return func(_ context.Context, _ any) (string, error) {
		return "", nil
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("empty report when all rules pass", func(t *testing.T) {
		rules := validate.RuleSet{
			"email": {passRule(), passRule()},
			"name":  {passRule()},
		}

		report, err := validate.Validate(ctx, rules, map[string]any{"email": "a@b.co", "name": "x"})
		require.NoError(t, err)
		assert.True(t, report.Empty())
	})

	t.Run("accumulates all failures for a field in rule order", func(t *testing.T) {
		rules := validate.RuleSet{
			"password": {staticRule("first"), passRule(), staticRule("second")},
		}

		report, err := validate.Validate(ctx, rules, map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, report["password"])
	})

	t.Run("only failing fields appear in report", func(t *testing.T) {
		rules := validate.RuleSet{
			"good": {passRule()},
			"bad":  {staticRule("nope")},
		}

		report, err := validate.Validate(ctx, rules, map[string]any{})
		require.NoError(t, err)
		assert.NotContains(t, report, "good")
		assert.Equal(t, []string{"nope"}, report["bad"])
	})

	t.Run("substitutes field token with humanized name", func(t *testing.T) {
		rules := validate.RuleSet{
			"characterName": {staticRule("The :field field is required.")},
		}

		report, err := validate.Validate(ctx, rules, map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, []string{"The Character name field is required."}, report["characterName"])
	})

	t.Run("passes field value to each rule", func(t *testing.T) {
		var seen []any
		rule := func(_ context.Context, value any) (string, error) {
			seen = append(seen, value)
			return "", nil
		}
		rules := validate.RuleSet{"age": {rule, rule}}

		_, err := validate.Validate(ctx, rules, map[string]any{"age": 42})
		require.NoError(t, err)
		assert.Equal(t, []any{42, 42}, seen)
	})

	t.Run("missing data key validates as nil", func(t *testing.T) {
		rules := validate.RuleSet{
			"email": {validate.Required("required")},
		}

		report, err := validate.Validate(ctx, rules, map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, []string{"required"}, report["email"])
	})

	t.Run("rule error aborts with field context", func(t *testing.T) {
		boom := errors.New("lookup down")
		rules := validate.RuleSet{
			"characterName": {func(_ context.Context, _ any) (string, error) {
				return "", boom
			}},
		}

		report, err := validate.Validate(ctx, rules, map[string]any{})
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, report)
	})

	t.Run("idempotent for same rules and data", func(t *testing.T) {
		rules := validate.RuleSet{
			"email":    {validate.Required("r"), validate.Email("t", "f")},
			"password": {validate.Required("r")},
		}
		data := map[string]any{"email": "not-an-email"}

		first, err := validate.Validate(ctx, rules, data)
		require.NoError(t, err)
		second, err := validate.Validate(ctx, rules, data)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("many fields validate concurrently without data races", func(t *testing.T) {
		rules := validate.RuleSet{}
		data := map[string]any{}
		fields := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
		for _, f := range fields {
			rules[f] = []validate.Rule{staticRule("bad " + f)}
		}

		report, err := validate.Validate(ctx, rules, data)
		require.NoError(t, err)
		assert.Len(t, report, len(fields))
	})
}

func TestHumanizeField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"characterName", "Character name"},
		{"email", "Email"},
		{"passwordConfirmation", "Password confirmation"},
		{"characterSex", "Character sex"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.HumanizeField(tt.in))
		})
	}
}
