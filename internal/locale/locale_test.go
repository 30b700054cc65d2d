// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package locale_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emberwake/emberwake/internal/locale"
)

func TestCatalogT(t *testing.T) {
	catalog := locale.NewCatalog()

	t.Run("resolves known key", func(t *testing.T) {
		msg := catalog.T("register.email_taken", nil)
		assert.Equal(t, "That email address is already registered.", msg)
	})

	t.Run("substitutes params", func(t *testing.T) {
		msg := catalog.T("name.length", locale.Params{"min": "3", "max": "20"})
		assert.Equal(t, "The :field field must be between 3 and 20 characters.", msg)
	})

	t.Run("leaves field token for the validation engine", func(t *testing.T) {
		msg := catalog.T("validation.required", nil)
		assert.Contains(t, msg, ":field")
	})

	t.Run("unknown key resolves to itself", func(t *testing.T) {
		assert.Equal(t, "no.such.key", catalog.T("no.such.key", nil))
	})
}

func TestCatalogOverrides(t *testing.T) {
	catalog := locale.NewCatalogWithMessages(map[string]string{
		"register.success": "Welcome to :realm!",
		"custom.greeting":  "Hello.",
	})

	t.Run("override replaces built-in message", func(t *testing.T) {
		msg := catalog.T("register.success", locale.Params{"realm": "Emberwake"})
		assert.Equal(t, "Welcome to Emberwake!", msg)
	})

	t.Run("new key is available", func(t *testing.T) {
		assert.Equal(t, "Hello.", catalog.T("custom.greeting", nil))
	})

	t.Run("untouched built-ins remain", func(t *testing.T) {
		assert.Equal(t, "That character name is already taken.", catalog.T("register.name_taken", nil))
	})

	t.Run("default catalog is not mutated", func(t *testing.T) {
		fresh := locale.NewCatalog()
		assert.Equal(t, "Account created. Check your email to verify your address.", fresh.T("register.success", nil))
	})
}
