package config

import "strings"

// Config is the top-level configuration structure for accbridge.
// Non-secret settings come from config.yaml; credentials and the run mode
// come from the environment (see Credentials).
type Config struct {
	// BaseURL is the Autodesk Platform Services API root.
	BaseURL string `yaml:"baseURL,omitempty"`

	Auth   AuthConfig   `yaml:"auth"`
	Server ServerConfig `yaml:"server"`

	// Credentials is populated from the environment, never from YAML.
	Credentials Credentials `yaml:"-"`
}

// AuthConfig configures the OAuth token lifecycle.
type AuthConfig struct {
	// CallbackPort is the fixed local port for the OAuth callback listener.
	// It must match the redirect URI registered with the APS application,
	// so there is deliberately no fallback to other ports.
	CallbackPort int `yaml:"callbackPort,omitempty"`

	// TwoLeggedScope is the scope requested for client-credentials tokens.
	TwoLeggedScope string `yaml:"twoLeggedScope,omitempty"`

	// ThreeLeggedScope is the scope requested for authorization-code tokens.
	ThreeLeggedScope string `yaml:"threeLeggedScope,omitempty"`

	// StateDir is the directory holding the persisted token record.
	// Defaults to the process working directory.
	StateDir string `yaml:"stateDir,omitempty"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// Credentials holds environment-sourced secrets and the run mode flag.
type Credentials struct {
	ClientID     string `env:"APS_CLIENT_ID"`
	ClientSecret string `env:"APS_CLIENT_SECRET"`
	HubID        string `env:"HUB_ID"`
	ProjectID    string `env:"PROJECT_ID"`

	// ServerMode disables the interactive authorization flow entirely:
	// no browser, no callback listener. A missing cached token is then a
	// hard failure instead of a login prompt.
	ServerMode bool `env:"SERVER_MODE"`
}

// TokenURL returns the OAuth token endpoint.
func (c *Config) TokenURL() string {
	return c.BaseURL + "/authentication/v2/token"
}

// AuthorizeURL returns the OAuth authorization endpoint.
func (c *Config) AuthorizeURL() string {
	return c.BaseURL + "/authentication/v2/authorize"
}

// CleanHubID returns the hub id without the "b." business prefix that the
// admin UI displays but the HQ API rejects.
func (c *Credentials) CleanHubID() string {
	return strings.TrimPrefix(c.HubID, "b.")
}

// CleanProjectID returns the project id without the "b." prefix.
func (c *Credentials) CleanProjectID() string {
	return strings.TrimPrefix(c.ProjectID, "b.")
}
