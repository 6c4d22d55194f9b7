package aps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func startTestServer(t *testing.T) *CallbackServer {
	t.Helper()

	server := NewCallbackServer(0)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := server.Start(ctx); err != nil {
		t.Fatalf("failed to start callback server: %v", err)
	}
	t.Cleanup(server.Stop)

	return server
}

func callbackGet(t *testing.T, server *CallbackServer, query string) *http.Response {
	t.Helper()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/%s", server.Port(), query))
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCallbackServer_CapturesCode(t *testing.T) {
	server := startTestServer(t)

	resp := callbackGet(t, server, "?code=abc123")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Authorization Successful") {
		t.Error("expected human-readable success page")
	}

	select {
	case result := <-server.Result():
		if result.Code != "abc123" {
			t.Errorf("code = %q, want abc123", result.Code)
		}
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}
}

func TestCallbackServer_SingleFlightCapture(t *testing.T) {
	server := startTestServer(t)

	// Browser double-fire: both requests get a friendly page, but only
	// the first code is ever delivered.
	callbackGet(t, server, "?code=first")
	callbackGet(t, server, "?code=second")

	select {
	case result := <-server.Result():
		if result.Code != "first" {
			t.Errorf("code = %q, want first", result.Code)
		}
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}

	select {
	case result := <-server.Result():
		t.Errorf("unexpected second delivery: %+v", result)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCallbackServer_IgnoresRequestsWithoutCode(t *testing.T) {
	server := startTestServer(t)

	resp := callbackGet(t, server, "?error=access_denied")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for code-less request", resp.StatusCode)
	}

	select {
	case result := <-server.Result():
		t.Errorf("unexpected delivery: %+v", result)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCallbackServer_ReleasesPortOnStop(t *testing.T) {
	server := NewCallbackServer(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("failed to start callback server: %v", err)
	}
	port := server.Port()
	server.Stop()

	// A second flow (e.g. after a timeout) must be able to rebind.
	rebind := NewCallbackServer(port)
	if err := rebind.Start(ctx); err != nil {
		t.Fatalf("could not rebind port %d after Stop: %v", port, err)
	}
	rebind.Stop()
}

func TestCallbackServer_BindFailureIsTyped(t *testing.T) {
	server := startTestServer(t)

	conflicting := NewCallbackServer(server.Port())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := conflicting.Start(ctx)
	if err == nil {
		conflicting.Stop()
		t.Fatal("expected bind failure on occupied port")
	}

	bindErr, ok := err.(*BindError)
	if !ok {
		t.Fatalf("expected *BindError, got %T", err)
	}
	if bindErr.Port != server.Port() {
		t.Errorf("BindError.Port = %d, want %d", bindErr.Port, server.Port())
	}
}

func TestCallbackServer_RedirectURI(t *testing.T) {
	server := NewCallbackServer(8080)
	if got, want := server.RedirectURI(), "http://localhost:8080/"; got != want {
		t.Errorf("RedirectURI() = %q, want %q", got, want)
	}
}
