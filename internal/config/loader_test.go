package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("APS_CLIENT_ID", "test-client")
	t.Setenv("APS_CLIENT_SECRET", "test-secret")
	t.Setenv("HUB_ID", "b.hub-uuid")
	t.Setenv("PROJECT_ID", "b.project-uuid")
	t.Setenv("SERVER_MODE", "false")
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	setTestCredentials(t)

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultCallbackPort, cfg.Auth.CallbackPort)
	assert.Equal(t, DefaultTwoLeggedScope, cfg.Auth.TwoLeggedScope)
	assert.Equal(t, DefaultThreeLeggedScope, cfg.Auth.ThreeLeggedScope)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	setTestCredentials(t)

	dir := t.TempDir()
	content := `
baseURL: https://sandbox.api.autodesk.com
auth:
  callbackPort: 9090
  threeLeggedScope: data:read data:write
server:
  port: 3000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://sandbox.api.autodesk.com", cfg.BaseURL)
	assert.Equal(t, 9090, cfg.Auth.CallbackPort)
	assert.Equal(t, "data:read data:write", cfg.Auth.ThreeLeggedScope)
	assert.Equal(t, 3000, cfg.Server.Port)
	// Untouched values keep their defaults.
	assert.Equal(t, DefaultTwoLeggedScope, cfg.Auth.TwoLeggedScope)
}

func TestLoadConfig_CredentialsFromEnvironment(t *testing.T) {
	setTestCredentials(t)
	t.Setenv("SERVER_MODE", "true")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "test-client", cfg.Credentials.ClientID)
	assert.Equal(t, "test-secret", cfg.Credentials.ClientSecret)
	assert.True(t, cfg.Credentials.ServerMode)
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	t.Setenv("APS_CLIENT_ID", "")
	t.Setenv("APS_CLIENT_SECRET", "")

	_, err := LoadConfig(t.TempDir())
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	setTestCredentials(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("auth: ["), 0644))

	_, err := LoadConfig(dir)
	require.Error(t, err)
}

func TestCredentials_CleanIDs(t *testing.T) {
	creds := Credentials{HubID: "b.hub-uuid", ProjectID: "project-uuid"}

	assert.Equal(t, "hub-uuid", creds.CleanHubID())
	assert.Equal(t, "project-uuid", creds.CleanProjectID())
}

func TestValidate_PortRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Credentials = Credentials{ClientID: "id", ClientSecret: "secret"}

	require.NoError(t, cfg.Validate())

	cfg.Auth.CallbackPort = 0
	require.Error(t, cfg.Validate())

	cfg.Auth.CallbackPort = 8080
	cfg.Server.Port = 70000
	require.Error(t, cfg.Validate())
}

func TestConfig_EndpointURLs(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, DefaultBaseURL+"/authentication/v2/token", cfg.TokenURL())
	assert.Equal(t, DefaultBaseURL+"/authentication/v2/authorize", cfg.AuthorizeURL())
}
