package config

const (
	// DefaultBaseURL is the production APS API root.
	DefaultBaseURL = "https://developer.api.autodesk.com"

	// DefaultCallbackPort is the registered OAuth redirect port.
	DefaultCallbackPort = 8080

	// DefaultTwoLeggedScope covers account user lookups.
	DefaultTwoLeggedScope = "account:read data:read"

	// DefaultThreeLeggedScope covers issue reads on behalf of the user.
	DefaultThreeLeggedScope = "data:read"

	// DefaultServerPort is the HTTP API port Power BI connects to.
	DefaultServerPort = 8080
)

// GetDefaultConfig returns the default configuration for accbridge.
func GetDefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Auth: AuthConfig{
			CallbackPort:     DefaultCallbackPort,
			TwoLeggedScope:   DefaultTwoLeggedScope,
			ThreeLeggedScope: DefaultThreeLeggedScope,
			StateDir:         ".",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: DefaultServerPort,
		},
	}
}
