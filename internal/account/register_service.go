// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/emberwake/emberwake/internal/account/names"
	"github.com/emberwake/emberwake/internal/locale"
	"github.com/emberwake/emberwake/internal/mail"
	"github.com/emberwake/emberwake/internal/validate"
	"github.com/emberwake/emberwake/pkg/errutil"
)

// RegistrationRequest holds the raw fields of one registration
// submission. Values arrive untyped from the form boundary: a field may
// be absent (nil), a string, or another primitive until a validator
// narrows it. The request is captured once and never mutated.
type RegistrationRequest struct {
	Email                any
	Password             any
	PasswordConfirmation any
	CharacterName        any
	CharacterSex         any
	CharacterPronoun     any
}

// fields exposes the request to the validation engine.
func (r RegistrationRequest) fields() map[string]any {
	return map[string]any{
		"email":                r.Email,
		"password":             r.Password,
		"passwordConfirmation": r.PasswordConfirmation,
		"characterName":        r.CharacterName,
		"characterSex":         r.CharacterSex,
		"characterPronoun":     r.CharacterPronoun,
	}
}

// RegistrationResult is the success outcome of a registration.
type RegistrationResult struct {
	Account    *Account
	Character  *Character
	RedirectTo string
	Status     string
}

// RegistrationBundle is the multi-record payload of the atomic creation
// step: the account, its main character, and its verification token are
// persisted together or not at all.
type RegistrationBundle struct {
	Account   *Account
	Character *Character
	Token     *VerificationToken
}

// CreatedBundle is what the atomic creation step yields back.
type CreatedBundle struct {
	Account *Account
	Token   *VerificationToken
}

// RegistrationRepository performs the atomic multi-record creation.
type RegistrationRepository interface {
	// CreateBundle persists the bundle in a single transaction. A unique
	// constraint violation surfaces as ErrEmailTaken or
	// ErrCharacterNameTaken when attributable, so a request racing past
	// the pre-checks still gets rejected by the storage layer.
	CreateBundle(ctx context.Context, bundle RegistrationBundle) (*CreatedBundle, error)
}

// RegistrationService orchestrates the account-registration workflow:
// validate, normalize, pre-check uniqueness, derive the character
// payload, hash the credential, create atomically, dispatch the
// verification email, and hand back a redirect.
type RegistrationService struct {
	accounts      AccountRepository
	characters    CharacterRepository
	verifications VerificationRepository
	registrations RegistrationRepository
	factory       CharacterFactory
	hasher        PasswordHasher
	namePolicy    *names.Policy
	notifier      mail.Notifier
	catalog       *locale.Catalog
	logger        *slog.Logger

	dispatches sync.WaitGroup
}

// NewRegistrationService creates a RegistrationService.
func NewRegistrationService(
	accounts AccountRepository,
	characters CharacterRepository,
	verifications VerificationRepository,
	registrations RegistrationRepository,
	factory CharacterFactory,
	hasher PasswordHasher,
	namePolicy *names.Policy,
	notifier mail.Notifier,
	catalog *locale.Catalog,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		accounts:      accounts,
		characters:    characters,
		verifications: verifications,
		registrations: registrations,
		factory:       factory,
		hasher:        hasher,
		namePolicy:    namePolicy,
		notifier:      notifier,
		catalog:       catalog,
		logger:        logger,
	}
}

// rules builds the validation rule set for a submission. The
// confirmation rule closes over the raw password so the two fields can
// be compared without cross-field sequencing in the engine.
func (s *RegistrationService) rules(req RegistrationRequest) validate.RuleSet {
	t := s.catalog.T
	return validate.RuleSet{
		"email": {
			validate.Required(t("validation.required", nil)),
			validate.Email(t("validation.string", nil), t("validation.email", nil)),
		},
		"password": {
			validate.Required(t("validation.required", nil)),
			validate.String(t("validation.string", nil)),
		},
		"passwordConfirmation": {
			validate.Required(t("validation.required", nil)),
			validate.String(t("validation.string", nil)),
			validate.SameAs(req.Password, t("validation.confirmed", nil)),
		},
		"characterName": {
			validate.Required(t("validation.required", nil)),
			s.namePolicy.Rule(),
		},
		"characterSex": {
			validate.Required(t("validation.required", nil)),
			validate.String(t("validation.string", nil)),
		},
	}
}

// Register runs the registration workflow for one submission.
//
// Failure modes: *ValidationError with the full per-field report,
// ErrEmailTaken, ErrCharacterNameTaken (both wrapped with context), or an
// opaque persistence failure. No partial state is persisted on any
// failure path.
func (s *RegistrationService) Register(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error) {
	report, err := validate.Validate(ctx, s.rules(req), req.fields())
	if err != nil {
		return nil, oops.Code("REGISTER_VALIDATE_FAILED").Wrap(err)
	}
	if !report.Empty() {
		return nil, &ValidationError{Report: report}
	}

	// Validation passed, so these fields must be strings. A failure here
	// is a defect in the rule set, not bad input.
	email, err := stringField(req.Email, "email")
	if err != nil {
		return nil, err
	}
	password, err := stringField(req.Password, "password")
	if err != nil {
		return nil, err
	}
	name, err := stringField(req.CharacterName, "characterName")
	if err != nil {
		return nil, err
	}
	rawSex, err := stringField(req.CharacterSex, "characterSex")
	if err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)
	sex, err := ParseSex(rawSex)
	if err != nil {
		msg := strings.ReplaceAll(s.catalog.T("validation.sex", nil),
			validate.FieldToken, validate.HumanizeField("characterSex"))
		return nil, &ValidationError{Report: validate.Report{"characterSex": {msg}}}
	}
	pronoun := DefaultPronoun(sex)
	if raw, ok := req.CharacterPronoun.(string); ok {
		pronoun = ParsePronoun(raw, sex)
	}

	// Best-effort pre-check for a friendly field-scoped error. The unique
	// index on the storage layer remains the final authority.
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, oops.Code("REGISTER_EMAIL_TAKEN").With("email", email).Wrap(ErrEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "get account by email").Wrap(err)
	}

	input, err := s.factory.Generate(ctx, CharacterSeed{Name: name, Sex: sex, Pronoun: pronoun})
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "generate character input").Wrap(err)
	}

	if _, err := s.characters.GetByName(ctx, input.Name); err == nil {
		return nil, oops.Code("REGISTER_NAME_TAKEN").With("name", input.Name).Wrap(ErrCharacterNameTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "get character by name").Wrap(err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	acct, err := NewAccount(email, passwordHash)
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "new account").Wrap(err)
	}
	char, err := NewCharacter(acct.ID, input, true)
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "new character").Wrap(err)
	}
	plainToken, tokenHash, err := GenerateVerificationToken()
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "generate verification token").Wrap(err)
	}
	token, err := NewVerificationToken(acct.ID, tokenHash, time.Now().Add(VerificationTokenExpiry))
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "new verification token").Wrap(err)
	}

	created, err := s.registrations.CreateBundle(ctx, RegistrationBundle{
		Account:   acct,
		Character: char,
		Token:     token,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrCharacterNameTaken) {
			return nil, err
		}
		return nil, oops.Code("REGISTER_PERSIST_FAILED").With("operation", "create bundle").Wrap(err)
	}
	if created == nil || created.Account == nil || created.Token == nil {
		return nil, oops.Code("REGISTER_PERSIST_FAILED").
			Errorf("creation did not yield an account and verification token")
	}

	// Dispatch outside the transaction. A failed send is logged and
	// retried by the notifier's own policy; it never unwinds the account.
	s.dispatches.Add(1)
	go func() {
		defer s.dispatches.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if sendErr := s.notifier.SendVerification(sendCtx, acct.Email, plainToken); sendErr != nil {
			errutil.LogError(s.logger, "verification email dispatch failed", sendErr)
		}
	}()

	return &RegistrationResult{
		Account:    created.Account,
		Character:  char,
		RedirectTo: "/login",
		Status:     s.catalog.T("register.success", nil),
	}, nil
}

// ConfirmEmail consumes a verification token: it marks the owning
// account's email verified and invalidates the account's tokens.
func (s *RegistrationService) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return oops.Code("VERIFY_TOKEN_EMPTY").Errorf("verification token cannot be empty")
	}

	record, err := s.verifications.GetByTokenHash(ctx, HashVerificationToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("VERIFY_TOKEN_INVALID").Errorf("verification token not found")
		}
		return oops.Code("VERIFY_FAILED").With("operation", "get token by hash").Wrap(err)
	}

	if record.IsExpired() {
		return oops.Code("VERIFY_TOKEN_EXPIRED").Errorf("verification token has expired")
	}

	if err := s.accounts.MarkVerified(ctx, record.AccountID); err != nil {
		return oops.Code("VERIFY_FAILED").With("operation", "mark verified").Wrap(err)
	}

	// Cleanup. The account is already verified; a failure here only
	// leaves a spent token behind.
	if err := s.verifications.DeleteByAccount(ctx, record.AccountID); err != nil {
		errutil.LogError(s.logger, "verification token cleanup failed", err)
	}

	return nil
}

// Wait blocks until in-flight email dispatches finish. Called during
// shutdown so best-effort sends are not cut off mid-flight.
func (s *RegistrationService) Wait() {
	s.dispatches.Wait()
}

// stringField narrows a validated field to its string form. Failure is a
// programming-error guard: validation guaranteed the type, so a mismatch
// means the rule set and workflow disagree.
func stringField(value any, field string) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", oops.Code("REGISTER_INVARIANT_VIOLATION").
			With("field", field).
			Errorf("field %q is not a string after validation", field)
	}
	return s, nil
}
