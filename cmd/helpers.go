package cmd

import (
	"accbridge/internal/acc"
	"accbridge/internal/aps"
	"accbridge/internal/config"
)

// loadConfig loads configuration honoring the global --config-path flag.
func loadConfig() (config.Config, error) {
	return config.LoadConfig(rootConfigPath)
}

// strategyFor returns the token acquisition strategy for the current run
// mode. SERVER_MODE disables the interactive flow entirely: no browser,
// no callback listener, a missing cached token fails immediately.
func strategyFor(cfg config.Config) aps.Strategy {
	if cfg.Credentials.ServerMode {
		return aps.StrategyNonInteractive
	}
	return aps.StrategyInteractive
}

// buildProviders wires both token providers from configuration.
func buildProviders(cfg config.Config) (*aps.TwoLeggedProvider, *aps.ThreeLeggedProvider) {
	twoLegged := aps.NewTwoLeggedProvider(aps.TwoLeggedConfig{
		ClientID:     cfg.Credentials.ClientID,
		ClientSecret: cfg.Credentials.ClientSecret,
		TokenURL:     cfg.TokenURL(),
		Scope:        cfg.Auth.TwoLeggedScope,
	})

	threeLegged := aps.NewThreeLeggedProvider(aps.ThreeLeggedConfig{
		ClientID:     cfg.Credentials.ClientID,
		ClientSecret: cfg.Credentials.ClientSecret,
		AuthorizeURL: cfg.AuthorizeURL(),
		TokenURL:     cfg.TokenURL(),
		Scope:        cfg.Auth.ThreeLeggedScope,
		CallbackPort: cfg.Auth.CallbackPort,
		Strategy:     strategyFor(cfg),
		Store:        aps.NewTokenStore(cfg.Auth.StateDir),
	})

	return twoLegged, threeLegged
}

// buildACCClient wires the downstream API client from configuration.
func buildACCClient(cfg config.Config, twoLegged *aps.TwoLeggedProvider, threeLegged *aps.ThreeLeggedProvider) *acc.Client {
	return acc.NewClient(acc.ClientConfig{
		BaseURL:     cfg.BaseURL,
		HubID:       cfg.Credentials.CleanHubID(),
		ProjectID:   cfg.Credentials.CleanProjectID(),
		TwoLegged:   twoLegged,
		ThreeLegged: threeLegged,
	})
}
