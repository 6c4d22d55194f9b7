package aps

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"accbridge/pkg/logging"
)

// TokenCacheFile is the persisted token record filename. Its location and
// JSON shape ({access_token, expires_at}) are an external contract: other
// tooling reads and deletes this file.
const TokenCacheFile = "token_cache.json"

// PersistedExpiryMargin is how much remaining lifetime a persisted token
// must have to be reused. A token closer to expiry than this is treated as
// absent and re-acquired, rather than risking expiry mid-operation.
const PersistedExpiryMargin = 300 * time.Second

// PersistedToken is the on-disk record for a three-legged token.
type PersistedToken struct {
	AccessToken string `json:"access_token"`

	// ExpiresAt is a unix timestamp in seconds. Float so records written
	// by other tooling with sub-second precision still parse.
	ExpiresAt float64 `json:"expires_at"`
}

// Expiry returns the record's expiry as a time.Time.
func (t *PersistedToken) Expiry() time.Time {
	sec := int64(t.ExpiresAt)
	nsec := int64((t.ExpiresAt - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// TokenStore persists a single three-legged token record to disk so the
// interactive authorization step survives process restarts.
//
// Corrupt, missing, or near-expiry records are all treated as a cache miss,
// never as an error: the caller falls through to re-acquisition.
type TokenStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewTokenStore creates a token store rooted at stateDir.
func NewTokenStore(stateDir string) *TokenStore {
	if stateDir == "" {
		stateDir = "."
	}
	return &TokenStore{
		path: filepath.Join(stateDir, TokenCacheFile),
		now:  time.Now,
	}
}

// Path returns the location of the persisted record.
func (s *TokenStore) Path() string {
	return s.path
}

// Load returns the persisted token if it exists and has more than
// PersistedExpiryMargin of lifetime left, nil otherwise.
func (s *TokenStore) Load() *PersistedToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var token PersistedToken
	if err := json.Unmarshal(data, &token); err != nil {
		logging.Warn("TokenStore", "Ignoring unreadable token cache at %s: %v", s.path, err)
		return nil
	}

	if token.AccessToken == "" {
		return nil
	}

	if !s.now().Add(PersistedExpiryMargin).Before(token.Expiry()) {
		logging.Debug("TokenStore", "Persisted token expires too soon, re-authentication required")
		return nil
	}

	return &token
}

// Save writes a new record, overwriting any prior one. The full expires_in
// is recorded; the safety margin is applied at load time.
func (s *TokenStore) Save(accessToken string, expiresIn int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := PersistedToken{
		AccessToken: accessToken,
		ExpiresAt:   float64(s.now().Unix() + int64(expiresIn)),
	}

	data, err := json.Marshal(&token)
	if err != nil {
		return err
	}

	// Owner read/write only: this file holds a live credential.
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return err
	}

	logging.Info("TokenStore", "Token cached (valid for %d minutes)", expiresIn/60)
	return nil
}

// Delete removes the persisted record. Deleting an already-absent record
// is not an error. Callers invoke this when a downstream 401 proves the
// token is dead despite passing the expiry check, forcing the next run
// through interactive authorization.
func (s *TokenStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
