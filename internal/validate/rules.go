// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package validate

import (
	"context"
	"regexp"
	"strings"
)

// emailRegex matches local@domain.tld with no '@' inside the local or
// domain parts.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Slug length limits.
const (
	MinSlugLength = 3
	MaxSlugLength = 20
)

// slugRegex matches lowercase letters, digits, and hyphens.
var slugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// Required fails when the value is absent or empty: nil, the empty
// string, or false.
func Required(msg string) Rule {
	return func(_ context.Context, value any) (string, error) {
		switch v := value.(type) {
		case nil:
			return msg, nil
		case string:
			if v == "" {
				return msg, nil
			}
		case bool:
			if !v {
				return msg, nil
			}
		}
		return "", nil
	}
}

// String fails when the value is present but not a string.
func String(msg string) Rule {
	return func(_ context.Context, value any) (string, error) {
		if _, ok := value.(string); !ok {
			return msg, nil
		}
		return "", nil
	}
}

// Email fails when the value is not a string (typeMsg) or does not have
// the shape local@domain.tld (formatMsg).
func Email(typeMsg, formatMsg string) Rule {
	return func(_ context.Context, value any) (string, error) {
		s, ok := value.(string)
		if !ok {
			return typeMsg, nil
		}
		if !emailRegex.MatchString(s) {
			return formatMsg, nil
		}
		return "", nil
	}
}

// Slug fails when the value is not a lowercase slug of 3-20 characters
// drawn from [a-z0-9-].
func Slug(msg string) Rule {
	return func(_ context.Context, value any) (string, error) {
		s, ok := value.(string)
		if !ok {
			return msg, nil
		}
		if len(s) < MinSlugLength || len(s) > MaxSlugLength {
			return msg, nil
		}
		if s != strings.ToLower(s) {
			return msg, nil
		}
		if !slugRegex.MatchString(s) {
			return msg, nil
		}
		return "", nil
	}
}

// SameAs fails when the value does not equal other. Used for password
// confirmation, where other is the companion field's raw value.
func SameAs(other any, msg string) Rule {
	return func(_ context.Context, value any) (string, error) {
		if value != other {
			return msg, nil
		}
		return "", nil
	}
}
