package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// authStatusCmd represents the auth status command.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show token cache status",
	Long: `Show the status of both token caches.

The two-legged cache is per process, so it always shows as absent here;
the row is kept so the output shape is stable for scripts. The
three-legged row reflects the persisted token_cache.json record.`,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	twoLegged, threeLegged := buildProviders(cfg)

	twoCached, twoExpiry := twoLegged.Status()
	threeCached, threeExpiry := threeLegged.Status()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Token", "Cached", "Expires"})
	t.AppendRow(statusRow("two-legged (app)", twoCached, twoExpiry))
	t.AppendRow(statusRow("three-legged (user)", threeCached, threeExpiry))
	t.Render()

	return nil
}

func statusRow(name string, cached bool, expiresAt time.Time) table.Row {
	if !cached {
		return table.Row{name, "no", "-"}
	}
	remaining := time.Until(expiresAt).Round(time.Minute)
	return table.Row{name, "yes", expiresAt.Local().Format(time.RFC3339) + " (" + remaining.String() + ")"}
}
