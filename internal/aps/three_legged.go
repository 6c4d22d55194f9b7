package aps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"accbridge/pkg/logging"
)

const (
	// DefaultHTTPTimeout bounds every token-endpoint request. An expired
	// timeout is treated the same as a provider rejection, not retried.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultExpiresIn is assumed when the provider omits expires_in.
	DefaultExpiresIn = 3600 * time.Second

	// DefaultWaitTimeout bounds the whole interactive authorization wait.
	DefaultWaitTimeout = 120 * time.Second

	// DefaultPollInterval is the wait-loop granularity.
	DefaultPollInterval = 1 * time.Second

	// DefaultProgressEvery is how often a "still waiting" line is printed
	// so a human watching the terminal knows the wait is alive.
	DefaultProgressEvery = 15 * time.Second
)

// Strategy selects what a ThreeLeggedProvider does on a cache miss.
type Strategy int

const (
	// StrategyInteractive opens a browser and captures the redirect.
	StrategyInteractive Strategy = iota

	// StrategyNonInteractive never binds a listener or opens a browser;
	// a cache miss is an immediate ErrNoCachedToken. Required for
	// unattended server deployments.
	StrategyNonInteractive
)

func (s Strategy) String() string {
	switch s {
	case StrategyInteractive:
		return "interactive"
	case StrategyNonInteractive:
		return "non-interactive"
	default:
		return "unknown"
	}
}

// ThreeLeggedConfig configures a ThreeLeggedProvider.
type ThreeLeggedConfig struct {
	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
	Scope        string

	// CallbackPort is the fixed local port for the redirect listener.
	// It must match the redirect URI registered with the provider.
	CallbackPort int

	Strategy Strategy

	// Store persists tokens across process restarts. Required.
	Store *TokenStore

	// WaitTimeout, PollInterval and ProgressEvery override the default
	// wait bounds; zero values select the defaults. Tests shorten these.
	WaitTimeout   time.Duration
	PollInterval  time.Duration
	ProgressEvery time.Duration

	// HTTPClient is optional; a 30-second-timeout client is used otherwise.
	HTTPClient *http.Client

	// OpenBrowser is optional; defaults to OpenBrowser. A failure to open
	// the browser is never fatal since the URL is always logged too.
	OpenBrowser func(url string) error
}

// ThreeLeggedProvider obtains a user-delegated bearer token via the
// authorization-code grant, capturing the redirect on a local listener and
// persisting the result so the interactive step is skipped while the
// token remains valid.
//
// The persisted cache is always consulted first; a valid record means zero
// network calls and no listener. Every failure mode is terminal for the
// current Token call: nothing is silently retried, the caller decides
// whether to abort or degrade.
type ThreeLeggedProvider struct {
	mu            sync.Mutex
	cfg           ThreeLeggedConfig
	client        *http.Client
	waitTimeout   time.Duration
	pollInterval  time.Duration
	progressEvery time.Duration
	openBrowser   func(string) error
}

// NewThreeLeggedProvider creates a three-legged token provider.
func NewThreeLeggedProvider(cfg ThreeLeggedConfig) *ThreeLeggedProvider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	p := &ThreeLeggedProvider{
		cfg:           cfg,
		client:        client,
		waitTimeout:   cfg.WaitTimeout,
		pollInterval:  cfg.PollInterval,
		progressEvery: cfg.ProgressEvery,
		openBrowser:   cfg.OpenBrowser,
	}
	if p.waitTimeout <= 0 {
		p.waitTimeout = DefaultWaitTimeout
	}
	if p.pollInterval <= 0 {
		p.pollInterval = DefaultPollInterval
	}
	if p.progressEvery <= 0 {
		p.progressEvery = DefaultProgressEvery
	}
	if p.openBrowser == nil {
		p.openBrowser = OpenBrowser
	}

	return p
}

// RedirectURI returns the redirect URI implied by the callback port.
func (p *ThreeLeggedProvider) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/", p.cfg.CallbackPort)
}

// Token returns a valid three-legged bearer token.
//
// The persisted record is checked first (cache-first, never bypassed).
// On a miss, the non-interactive strategy fails immediately with
// ErrNoCachedToken; the interactive strategy runs the full browser flow.
// At most one flow runs per provider at a time.
func (p *ThreeLeggedProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if token := p.cfg.Store.Load(); token != nil {
		remaining := time.Until(token.Expiry()).Round(time.Minute)
		logging.Info("Auth", "Using cached three-legged token (expires in %s)", remaining)
		return token.AccessToken, nil
	}

	if p.cfg.Strategy == StrategyNonInteractive {
		return "", ErrNoCachedToken
	}

	code, redirectURI, err := p.authorize(ctx)
	if err != nil {
		return "", err
	}

	return p.exchange(ctx, code, redirectURI)
}

// authorize runs the interactive portion: bind the listener, send the user
// to the authorization endpoint, and wait for the redirect to deliver a
// code. The listener is always stopped before returning, releasing the
// port for a later attempt.
func (p *ThreeLeggedProvider) authorize(ctx context.Context) (code, redirectURI string, err error) {
	server := NewCallbackServer(p.cfg.CallbackPort)
	if err := server.Start(ctx); err != nil {
		return "", "", err
	}
	defer server.Stop()

	redirectURI = server.RedirectURI()
	authURL := p.authorizationURL(redirectURI)

	// The URL is logged even when the browser opens fine: in headless or
	// remote sessions the log line is the only way to reach the consent page.
	logging.Info("Auth", "Authorization required, opening browser")
	logging.Info("Auth", "If the browser does not open, visit: %s", authURL)

	if err := p.openBrowser(authURL); err != nil {
		logging.Warn("Auth", "Could not open browser automatically: %v", err)
	}

	logging.Info("Auth", "Waiting for authorization (max %s)...", p.waitTimeout)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(p.waitTimeout)
	defer deadline.Stop()

	var elapsed time.Duration
	for {
		select {
		case result := <-server.Result():
			logging.Info("Auth", "Authorization code received")
			return result.Code, redirectURI, nil
		case <-ticker.C:
			elapsed += p.pollInterval
			if elapsed%p.progressEvery == 0 {
				logging.Info("Auth", "Still waiting... (%ds)", int(elapsed.Seconds()))
			}
		case <-deadline.C:
			return "", "", &AuthorizationTimeoutError{Timeout: p.waitTimeout}
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
	}
}

// authorizationURL builds the consent-page URL for the configured client.
func (p *ThreeLeggedProvider) authorizationURL(redirectURI string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {p.cfg.ClientID},
		"redirect_uri":  {redirectURI},
		"scope":         {p.cfg.Scope},
	}
	return p.cfg.AuthorizeURL + "?" + params.Encode()
}

// exchange trades the captured code for a token and persists the result.
// Persistence happens only after a successful exchange.
func (p *ThreeLeggedProvider) exchange(ctx context.Context, code, redirectURI string) (string, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"redirect_uri":  {redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("unexpected token endpoint response: %w", err)
	}

	expiresIn := tokenResp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = int(DefaultExpiresIn.Seconds())
	}

	if err := p.cfg.Store.Save(tokenResp.AccessToken, expiresIn); err != nil {
		// The token is still valid for this process; losing persistence
		// only costs a re-authorization on the next run.
		logging.Warn("Auth", "Failed to persist token: %v", err)
	}

	logging.Info("Auth", "Three-legged token obtained")
	return tokenResp.AccessToken, nil
}

// Invalidate deletes the persisted record. Downstream callers invoke this
// when the API returns 401 with a token that passed the expiry check, so
// the next invocation is forced through interactive authorization instead
// of looping on a dead token.
func (p *ThreeLeggedProvider) Invalidate() error {
	return p.cfg.Store.Delete()
}

// Status reports whether a usable persisted token exists and when it
// expires. The token value itself is never exposed here.
func (p *ThreeLeggedProvider) Status() (cached bool, expiresAt time.Time) {
	if token := p.cfg.Store.Load(); token != nil {
		return true, token.Expiry()
	}
	return false, time.Time{}
}
