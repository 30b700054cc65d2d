// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

// Package locale provides message lookup for user-facing strings.
//
// Messages may carry :name tokens. Tokens listed in the params of T are
// substituted at lookup time; any remaining tokens (notably :field) are
// left intact for later substitution by the validation engine.
package locale

import "strings"

// Params holds substitution values for message tokens.
type Params map[string]string

// Catalog resolves message keys to rendered strings.
type Catalog struct {
	messages map[string]string
}

// defaultMessages is the built-in English catalog.
var defaultMessages = map[string]string{
	"validation.required":  "The :field field is required.",
	"validation.string":    "The :field field must be text.",
	"validation.email":     "The :field field must be a valid email address.",
	"validation.slug":      "The :field field must be 3-20 lowercase letters, numbers, or hyphens.",
	"validation.confirmed": "The :field field must match the password.",
	"validation.sex":       "The :field field must be female, male, or neutral.",

	"name.type":      "The :field field must be text.",
	"name.length":    "The :field field must be between :min and :max characters.",
	"name.casing":    "The :field field must be capitalized, like :example.",
	"name.blocked":   "The :field field contains a word or prefix that is not allowed.",
	"name.malformed": "The :field field may only contain letters, spaces, hyphens, and apostrophes, with no stray whitespace.",
	"name.taken":     "The :field field is already in use.",

	"register.email_taken": "That email address is already registered.",
	"register.name_taken":  "That character name is already taken.",
	"register.success":     "Account created. Check your email to verify your address.",
	"register.failed":      "Something went wrong creating your account. Please try again.",

	"verify.success": "Your email address has been verified. You can now log in.",
	"verify.invalid": "That verification link is invalid or has expired.",
}

// NewCatalog creates a Catalog with the built-in English messages.
func NewCatalog() *Catalog {
	return &Catalog{messages: defaultMessages}
}

// NewCatalogWithMessages creates a Catalog with overrides layered on top
// of the built-in messages.
func NewCatalogWithMessages(overrides map[string]string) *Catalog {
	messages := make(map[string]string, len(defaultMessages)+len(overrides))
	for k, v := range defaultMessages {
		messages[k] = v
	}
	for k, v := range overrides {
		messages[k] = v
	}
	return &Catalog{messages: messages}
}

// T resolves key to its message, substituting each :name token present in
// params. Unknown keys resolve to the key itself so a missing message is
// visible rather than silent.
func (c *Catalog) T(key string, params Params) string {
	msg, ok := c.messages[key]
	if !ok {
		return key
	}
	for name, value := range params {
		msg = strings.ReplaceAll(msg, ":"+name, value)
	}
	return msg
}
