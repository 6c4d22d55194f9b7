package config

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials indicates APS_CLIENT_ID or APS_CLIENT_SECRET is unset.
var ErrMissingCredentials = errors.New("APS_CLIENT_ID and APS_CLIENT_SECRET must be set (see .env.example)")

// Validate checks the configuration for values that would only fail later,
// deep inside an OAuth flow, with a less helpful error.
func (c *Config) Validate() error {
	if c.Credentials.ClientID == "" || c.Credentials.ClientSecret == "" {
		return ErrMissingCredentials
	}

	if c.Auth.CallbackPort < 1 || c.Auth.CallbackPort > 65535 {
		return fmt.Errorf("invalid auth.callbackPort %d: must be between 1 and 65535", c.Auth.CallbackPort)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	if c.BaseURL == "" {
		return errors.New("baseURL must not be empty")
	}

	return nil
}
