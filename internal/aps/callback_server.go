package aps

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

//go:embed templates/callback_success.html
var callbackSuccessHTML string

// CallbackResult carries the authorization code captured from the
// provider's browser redirect.
type CallbackResult struct {
	Code string
}

// CallbackServer is a temporary local HTTP server whose only purpose is to
// receive the single OAuth redirect carrying an authorization code.
//
// The server binds exactly the configured port: the redirect URI registered
// with the OAuth provider names that port, so falling back to another one
// would break the flow. A second redirect (browser double-fire, reload of
// the success page) changes nothing after the first capture.
type CallbackServer struct {
	port     int
	server   *http.Server
	listener net.Listener
	resultCh chan *CallbackResult
	once     sync.Once
}

// NewCallbackServer creates a callback server for the given port.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:     port,
		resultCh: make(chan *CallbackResult, 1),
	}
}

// Start binds the port and begins serving in a background goroutine.
// A bind failure is terminal for the authorization flow and is reported
// as a *BindError.
func (s *CallbackServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return &BindError{Port: s.port, Err: err}
	}
	s.listener = listener
	// Port 0 resolves to an ephemeral port; tests rely on this.
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// Quiet by default: the listener is user-facing only through the
		// success page, not through access logs.
		ErrorLog: log.New(io.Discard, "", 0),
	}

	go func() {
		// ErrServerClosed is the normal shutdown path.
		_ = s.server.Serve(listener)
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Result returns the channel on which the captured code is delivered.
// At most one result is ever sent.
func (s *CallbackServer) Result() <-chan *CallbackResult {
	return s.resultCh
}

// handleCallback processes an incoming redirect. Only the first request
// carrying a code parameter produces a state change; the capture itself is
// guarded by sync.Once so a racing duplicate cannot deliver twice.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, callbackSuccessHTML)

	s.once.Do(func() {
		s.resultCh <- &CallbackResult{Code: code}
	})
}

// Stop shuts the server down and releases the port, so a later
// authorization attempt (e.g. after a timeout) can rebind it.
func (s *CallbackServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// RedirectURI returns the redirect URI the OAuth provider sends the
// browser back to. It must match the APS application registration exactly.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/", s.port)
}

// Port returns the port the server is bound to.
func (s *CallbackServer) Port() int {
	return s.port
}
