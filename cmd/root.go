package cmd

import (
	"errors"
	"os"

	"accbridge/internal/aps"
	"accbridge/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands. These are semantic so orchestrating
// scripts can distinguish "authenticate first" from a hard failure.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

// Persistent flags shared by all commands.
var (
	rootConfigPath string
	rootDebug      bool
)

// rootCmd represents the base command for the accbridge application.
var rootCmd = &cobra.Command{
	Use:   "accbridge",
	Short: "Bridge Autodesk Construction Cloud issue data into Power BI",
	Long: `accbridge connects Autodesk Construction Cloud (ACC) to Power BI
dashboards. It manages the OAuth tokens required by the ACC APIs
(app-only and user-delegated), fetches project issues, and serves them
over a small HTTP API that Power BI can read.

Credentials come from the environment (APS_CLIENT_ID, APS_CLIENT_SECRET,
HUB_ID, PROJECT_ID), optionally via a .env file in the working directory.
Set SERVER_MODE=true on unattended deployments to disable the interactive
browser flow entirely.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if rootDebug {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command, injected from main.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "accbridge version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to semantic exit codes.
func getExitCode(err error) int {
	if errors.Is(err, aps.ErrNoCachedToken) {
		return ExitCodeAuthRequired
	}

	var timeoutErr *aps.AuthorizationTimeoutError
	var exchangeErr *aps.ExchangeError
	var bindErr *aps.BindError
	if errors.As(err, &timeoutErr) || errors.As(err, &exchangeErr) || errors.As(err, &bindErr) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "directory containing config.yaml (default: working directory)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "enable verbose logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
}
