// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

// Package web exposes the registration workflow over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/emberwake/emberwake/internal/account"
	"github.com/emberwake/emberwake/internal/locale"
	"github.com/emberwake/emberwake/internal/observability"
	"github.com/emberwake/emberwake/pkg/errutil"
)

// RegistrationService is the workflow surface the handler consumes.
type RegistrationService interface {
	Register(ctx context.Context, req account.RegistrationRequest) (*account.RegistrationResult, error)
	ConfirmEmail(ctx context.Context, token string) error
}

// RegisterHandler serves the registration and email-confirmation routes.
type RegisterHandler struct {
	svc     RegistrationService
	catalog *locale.Catalog
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewRegisterHandler creates a RegisterHandler.
func NewRegisterHandler(svc RegistrationService, catalog *locale.Catalog, metrics *observability.Metrics, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{svc: svc, catalog: catalog, metrics: metrics, logger: logger}
}

// Mount registers the handler's routes on a chi router.
func (h *RegisterHandler) Mount(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Get("/verify/{token}", h.handleVerify)
}

// errorBody is the failure payload: invalid is true for user-correctable
// failures, and errors maps each field to its ordered messages.
type errorBody struct {
	Invalid bool                `json:"invalid"`
	Errors  map[string][]string `json:"errors"`
}

func (h *RegisterHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}

	req := account.RegistrationRequest{
		Email:                formValue(r, "email"),
		Password:             formValue(r, "password"),
		PasswordConfirmation: formValue(r, "passwordConfirmation"),
		CharacterName:        formValue(r, "characterName"),
		CharacterSex:         formValue(r, "characterSex"),
		CharacterPronoun:     formValue(r, "characterPronoun"),
	}

	result, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.writeRegisterError(w, err)
		return
	}

	h.metrics.RecordRegistration()
	http.Redirect(w, r, result.RedirectTo+"?status="+url.QueryEscape("registered"), http.StatusSeeOther)
}

func (h *RegisterHandler) writeRegisterError(w http.ResponseWriter, err error) {
	var vErr *account.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.metrics.RecordRegistrationFailure("validation")
		writeJSON(w, http.StatusBadRequest, errorBody{Invalid: true, Errors: vErr.Report})
	case errors.Is(err, account.ErrEmailTaken):
		h.metrics.RecordRegistrationFailure("email_taken")
		writeJSON(w, http.StatusBadRequest, errorBody{Invalid: true, Errors: map[string][]string{
			"email": {h.catalog.T("register.email_taken", nil)},
		}})
	case errors.Is(err, account.ErrCharacterNameTaken):
		h.metrics.RecordRegistrationFailure("name_taken")
		writeJSON(w, http.StatusBadRequest, errorBody{Invalid: true, Errors: map[string][]string{
			"characterName": {h.catalog.T("register.name_taken", nil)},
		}})
	default:
		h.metrics.RecordRegistrationFailure("persistence")
		errutil.LogError(h.logger, "registration failed", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": h.catalog.T("register.failed", nil),
		})
	}
}

func (h *RegisterHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.svc.ConfirmEmail(r.Context(), token); err != nil {
		errutil.LogError(h.logger, "email confirmation failed", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": h.catalog.T("verify.invalid", nil),
		})
		return
	}

	http.Redirect(w, r, "/login?status="+url.QueryEscape("verified"), http.StatusSeeOther)
}

// formValue returns the raw value for a form key, or nil when the key was
// not submitted at all. The distinction feeds the presence validator.
func formValue(r *http.Request, key string) any {
	if !r.Form.Has(key) {
		return nil
	}
	return r.Form.Get(key)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // response already committed
}
