package aps

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"accbridge/pkg/logging"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TwoLeggedExpiryMargin is the safety margin for in-memory two-legged
// tokens. A cached token closer to expiry than this is re-acquired.
const TwoLeggedExpiryMargin = 60 * time.Second

// TwoLeggedConfig configures a TwoLeggedProvider.
type TwoLeggedConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scope        string

	// HTTPClient is optional; a 30-second-timeout client is used otherwise.
	HTTPClient *http.Client
}

// TwoLeggedProvider obtains and caches a client-credentials (app-only)
// bearer token. The cache is in-memory only; there is no disk persistence.
//
// Two callers racing on an expired cache both perform an exchange and the
// last write wins. That is wasteful but harmless: the exchanges are
// idempotent and the cache never holds a half-written value.
type TwoLeggedProvider struct {
	mu        sync.Mutex
	cc        *clientcredentials.Config
	client    *http.Client
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewTwoLeggedProvider creates a two-legged token provider.
func NewTwoLeggedProvider(cfg TwoLeggedConfig) *TwoLeggedProvider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	return &TwoLeggedProvider{
		cc: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       strings.Fields(cfg.Scope),
			// APS v2 expects client credentials in the form body.
			AuthStyle: oauth2.AuthStyleInParams,
		},
		client: client,
		now:    time.Now,
	}
}

// Token returns a valid two-legged bearer token, reusing the cached one
// when it has more than TwoLeggedExpiryMargin of lifetime left. A network
// failure or provider rejection surfaces as an error; callers that only
// need the token for optional enrichment may degrade instead of aborting.
func (p *TwoLeggedProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Add(TwoLeggedExpiryMargin).Before(p.expiresAt) {
		return p.token, nil
	}

	logging.Info("Auth", "Requesting new two-legged token")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	tok, err := p.cc.Token(ctx)
	if err != nil {
		return "", err
	}

	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = p.now().Add(DefaultExpiresIn)
	}

	p.token = tok.AccessToken
	p.expiresAt = expiry

	return p.token, nil
}

// Status reports whether a usable token is cached and when it expires.
// The token value itself is never exposed here.
func (p *TwoLeggedProvider) Status() (cached bool, expiresAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Add(TwoLeggedExpiryMargin).Before(p.expiresAt) {
		return true, p.expiresAt
	}
	return false, time.Time{}
}
