package cmd

import (
	"fmt"

	"accbridge/internal/aps"

	"github.com/spf13/cobra"
)

// authLogoutCmd represents the auth logout command.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the persisted token",
	Long: `Delete the persisted three-legged token.

The next command needing user-delegated access will run the interactive
authorization again. Use this when the token has been revoked upstream
or when switching Autodesk accounts.`,
	RunE: runAuthLogout,
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := aps.NewTokenStore(cfg.Auth.StateDir)
	if err := store.Delete(); err != nil {
		return fmt.Errorf("could not delete token cache: %w", err)
	}

	fmt.Println("Persisted token deleted.")
	return nil
}
