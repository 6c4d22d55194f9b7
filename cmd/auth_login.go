package cmd

import (
	"fmt"
	"time"

	"accbridge/internal/aps"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// authLoginCmd represents the auth login command.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Run the interactive browser authorization",
	Long: `Run the interactive OAuth authorization flow.

A browser window opens on the Autodesk consent page; after approval the
provider redirects back to the local callback listener and the resulting
token is persisted to token_cache.json. Subsequent commands reuse it
until it nears expiry.

This command cannot run with SERVER_MODE=true. Authorize on a machine
with a browser first, then copy token_cache.json to the server.`,
	RunE: runAuthLogin,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, threeLegged := buildProviders(cfg)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " waiting for browser authorization..."
	s.Start()

	_, err = threeLegged.Token(cmd.Context())
	s.Stop()

	if err != nil {
		return err
	}

	fmt.Println("Authentication successful. Token cached at", aps.NewTokenStore(cfg.Auth.StateDir).Path())
	return nil
}
