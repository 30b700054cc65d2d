// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package account

import (
	"errors"
	"fmt"

	"github.com/emberwake/emberwake/internal/validate"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when the email is already registered.
// The pre-check returns it for the common case; the storage layer's
// unique constraint returns it for requests that race past the pre-check.
var ErrEmailTaken = errors.New("email already registered")

// ErrCharacterNameTaken is returned when the character name is already
// claimed by another account's character.
var ErrCharacterNameTaken = errors.New("character name already taken")

// ValidationError carries the full per-field error report of a failed
// registration submission. It is user-correctable, not a service defect.
type ValidationError struct {
	Report validate.Report
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Report))
}
