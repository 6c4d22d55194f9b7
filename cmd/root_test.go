package cmd

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"accbridge/internal/aps"
	"accbridge/internal/config"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no cached token", aps.ErrNoCachedToken, ExitCodeAuthRequired},
		{"wrapped no cached token", fmt.Errorf("fetch: %w", aps.ErrNoCachedToken), ExitCodeAuthRequired},
		{"authorization timeout", &aps.AuthorizationTimeoutError{Timeout: 120 * time.Second}, ExitCodeAuthFailed},
		{"exchange rejection", &aps.ExchangeError{StatusCode: 400, Body: "bad"}, ExitCodeAuthFailed},
		{"listener bind failure", &aps.BindError{Port: 8080, Err: errors.New("in use")}, ExitCodeAuthFailed},
		{"generic error", errors.New("boom"), ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.want {
				t.Errorf("getExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStrategyForServerMode(t *testing.T) {
	cfg := config.GetDefaultConfig()
	if strategyFor(cfg) != aps.StrategyInteractive {
		t.Error("expected interactive strategy by default")
	}

	cfg.Credentials.ServerMode = true
	if strategyFor(cfg) != aps.StrategyNonInteractive {
		t.Error("SERVER_MODE must select the non-interactive strategy")
	}
}
