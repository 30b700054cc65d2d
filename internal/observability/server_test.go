// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package observability

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer starts a Server on an ephemeral port and registers cleanup.
func startServer(t *testing.T, isReady ReadinessChecker) *Server {
	t.Helper()

	server := NewServer("127.0.0.1:0", isReady)
	_, err := server.Start()
	require.NoError(t, err)
	require.NotEmpty(t, server.Addr())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})

	return server
}

// get fetches a path from the server and returns status and body.
func get(t *testing.T, server *Server, path string) (int, string) {
	t.Helper()

	resp, err := http.Get("http://" + server.Addr() + path)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	server := startServer(t, func() bool { return true })

	status, body := get(t, server, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "# HELP")
	assert.Contains(t, body, "# TYPE")
	assert.Contains(t, body, "go_", "runtime collector missing")
	assert.Contains(t, body, "process_", "process collector missing")

	server.Metrics().RecordRegistration()
	server.Metrics().RecordRegistration()
	server.Metrics().RecordRegistrationFailure("email_taken")
	server.Metrics().RecordRegistrationFailure("validation")

	_, body = get(t, server, "/metrics")
	assert.Contains(t, body, `emberwake_registrations_total 2`)
	assert.Contains(t, body, `emberwake_registration_failures_total{reason="email_taken"} 1`)
	assert.Contains(t, body, `emberwake_registration_failures_total{reason="validation"} 1`)
}

func TestServer_HealthProbes(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		server := startServer(t, nil)

		status, body := get(t, server, "/healthz/liveness")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok\n", body)
	})

	t.Run("readiness when ready", func(t *testing.T) {
		server := startServer(t, func() bool { return true })

		status, body := get(t, server, "/healthz/readiness")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok\n", body)
	})

	t.Run("readiness when not ready", func(t *testing.T) {
		server := startServer(t, func() bool { return false })

		status, body := get(t, server, "/healthz/readiness")
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "not ready\n", body)
	})

	t.Run("nil checker defaults to ready", func(t *testing.T) {
		server := startServer(t, nil)

		status, _ := get(t, server, "/healthz/readiness")
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestServer_Lifecycle(t *testing.T) {
	t.Run("double start fails", func(t *testing.T) {
		server := startServer(t, nil)

		_, err := server.Start()
		assert.Error(t, err)
	})

	t.Run("stop without start is a no-op", func(t *testing.T) {
		server := NewServer("127.0.0.1:0", nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, server.Stop(ctx))
	})
}

func TestServer_ErrorChannel(t *testing.T) {
	t.Run("reports serve errors", func(t *testing.T) {
		server := NewServer("127.0.0.1:0", nil)

		errCh, err := server.Start()
		require.NoError(t, err)

		// Closing the listener out from under Serve forces an error
		// onto the channel, the same path a runtime failure would take.
		require.NotNil(t, server.listener)
		_ = server.listener.Close()

		select {
		case serveErr := <-errCh:
			assert.Error(t, serveErr)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for serve error")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})

	t.Run("closes on graceful shutdown", func(t *testing.T) {
		server := NewServer("127.0.0.1:0", nil)

		errCh, err := server.Start()
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, server.Stop(ctx))

		select {
		case serveErr, ok := <-errCh:
			if ok {
				assert.NoError(t, serveErr)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for error channel to close")
		}
	})
}
