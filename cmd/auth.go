package cmd

import (
	"github.com/spf13/cobra"
)

// authCmd groups the token lifecycle commands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage OAuth tokens for the ACC APIs",
	Long: `Manage the OAuth tokens accbridge uses against Autodesk Platform
Services.

Two token classes exist:
  - the two-legged (app-only) token, cached in memory per process
  - the three-legged (user-delegated) token, obtained through a browser
    consent flow and persisted to token_cache.json so the interactive
    step survives restarts`,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}
