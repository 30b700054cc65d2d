// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwake/emberwake/internal/account"
	"github.com/emberwake/emberwake/internal/locale"
	"github.com/emberwake/emberwake/internal/observability"
	"github.com/emberwake/emberwake/internal/validate"
	"github.com/emberwake/emberwake/internal/web"
)

// stubService scripts the workflow outcomes for handler tests.
type stubService struct {
	registerResult *account.RegistrationResult
	registerErr    error
	confirmErr     error

	gotRequest account.RegistrationRequest
	gotToken   string
}

func (s *stubService) Register(_ context.Context, req account.RegistrationRequest) (*account.RegistrationResult, error) {
	s.gotRequest = req
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.registerResult, nil
}

func (s *stubService) ConfirmEmail(_ context.Context, token string) error {
	s.gotToken = token
	return s.confirmErr
}

func newTestRouter(svc *stubService) chi.Router {
	h := web.NewRegisterHandler(
		svc,
		locale.NewCatalog(),
		observability.NewMetrics(prometheus.NewRegistry()),
		slog.New(slog.DiscardHandler),
	)
	r := chi.NewRouter()
	h.Mount(r)
	return r
}

func postForm(t *testing.T, router chi.Router, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validForm() url.Values {
	return url.Values{
		"email":                {"ash@emberwake.example"},
		"password":             {"hunter2hunter2"},
		"passwordConfirmation": {"hunter2hunter2"},
		"characterName":        {"Alaric"},
		"characterSex":         {"male"},
	}
}

func TestHandleRegister(t *testing.T) {
	t.Run("success redirects with status", func(t *testing.T) {
		svc := &stubService{registerResult: &account.RegistrationResult{RedirectTo: "/login"}}
		router := newTestRouter(svc)

		rec := postForm(t, router, validForm())

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?status=registered", rec.Header().Get("Location"))
		assert.Equal(t, "ash@emberwake.example", svc.gotRequest.Email)
	})

	t.Run("missing field arrives as nil not empty string", func(t *testing.T) {
		svc := &stubService{registerResult: &account.RegistrationResult{RedirectTo: "/login"}}
		router := newTestRouter(svc)

		form := validForm()
		form.Del("characterSex")
		postForm(t, router, form)

		assert.Nil(t, svc.gotRequest.CharacterSex)
		assert.Equal(t, "Alaric", svc.gotRequest.CharacterName)
	})

	t.Run("validation failure returns the field report", func(t *testing.T) {
		svc := &stubService{registerErr: &account.ValidationError{Report: validate.Report{
			"email":    {"The Email field is required."},
			"password": {"The Password field is required."},
		}}}
		router := newTestRouter(svc)

		rec := postForm(t, router, url.Values{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body struct {
			Invalid bool                `json:"invalid"`
			Errors  map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Invalid)
		assert.Equal(t, []string{"The Email field is required."}, body.Errors["email"])
		assert.Contains(t, body.Errors, "password")
	})

	t.Run("email conflict scopes the error to the email field", func(t *testing.T) {
		svc := &stubService{registerErr: account.ErrEmailTaken}
		router := newTestRouter(svc)

		rec := postForm(t, router, validForm())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Errors, "email")
		assert.NotContains(t, body.Errors, "characterName")
	})

	t.Run("name conflict scopes the error to the name field", func(t *testing.T) {
		svc := &stubService{registerErr: account.ErrCharacterNameTaken}
		router := newTestRouter(svc)

		rec := postForm(t, router, validForm())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Errors, "characterName")
	})

	t.Run("unexpected failure returns opaque 500", func(t *testing.T) {
		svc := &stubService{registerErr: errors.New("pq: out of disk")}
		router := newTestRouter(svc)

		rec := postForm(t, router, validForm())

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "out of disk")
	})
}

func TestHandleVerify(t *testing.T) {
	t.Run("valid token redirects to login", func(t *testing.T) {
		svc := &stubService{}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/verify/abc123", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?status=verified", rec.Header().Get("Location"))
		assert.Equal(t, "abc123", svc.gotToken)
	})

	t.Run("invalid token returns 400", func(t *testing.T) {
		svc := &stubService{confirmErr: errors.New("token not found")}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/verify/bad", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotContains(t, rec.Body.String(), "token not found")
	})
}
