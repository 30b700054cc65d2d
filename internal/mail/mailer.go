// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

// Package mail dispatches outbound notifications.
//
// The registration workflow treats dispatch as best-effort: the send
// happens outside the creation transaction and its failure never rolls
// back the account. The Retrying decorator makes the retry policy
// explicit rather than leaving a single failed send silently dropped.
package mail

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Notifier sends notifications to players.
type Notifier interface {
	// SendVerification sends the email-verification message carrying the
	// plaintext token to the given address.
	SendVerification(ctx context.Context, email, token string) error
}

// LogNotifier writes notifications to the log instead of sending them.
// Used in development and as the default wiring until an SMTP or
// provider-backed Notifier is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendVerification logs the verification dispatch. The token itself is
// not logged; its hash-backed single use makes leaking it a credential
// exposure.
func (n *LogNotifier) SendVerification(_ context.Context, email, token string) error {
	n.logger.Info("verification email dispatched",
		"email", email,
		"token_len", len(token),
	)
	return nil
}

// Retrying decorates a Notifier with exponential-backoff retries.
type Retrying struct {
	next       Notifier
	maxRetries uint64
	base       time.Duration
}

// NewRetrying creates a Retrying notifier. base is the initial backoff
// interval; maxRetries is the number of retries after the first attempt.
func NewRetrying(next Notifier, maxRetries uint64, base time.Duration) *Retrying {
	return &Retrying{next: next, maxRetries: maxRetries, base: base}
}

// SendVerification sends through the decorated notifier, retrying
// transient failures with exponential backoff.
func (r *Retrying) SendVerification(ctx context.Context, email, token string) error {
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(r.base))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if sendErr := r.next.SendVerification(ctx, email, token); sendErr != nil {
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("email", email).
			Wrap(err)
	}
	return nil
}
