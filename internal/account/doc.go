// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

// Package account implements the account-registration domain.
//
// # Domain Types
//
// Domain types (Account, Character, VerificationToken) should be created
// using their respective constructors:
//   - NewAccount - creates an Account with a normalized email
//   - NewCharacter - creates a Character from a derived creation payload
//   - NewVerificationToken - creates a VerificationToken with a validated expiry
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Workflow
//
// RegistrationService coordinates one registration submission end to end:
// validation through the engine in internal/validate, normalization,
// uniqueness pre-checks, credential hashing, the atomic creation of the
// account with its main character and verification token, and the
// best-effort dispatch of the verification email. ConfirmEmail consumes a
// verification token later.
//
// Uniqueness is enforced twice: the pre-checks give the user a
// field-scoped error in the common case, and the storage layer's unique
// constraints reject whatever races past them.
package account
