package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch project issues and print them as a table",
	Long: `Fetch the configured project's issues once and print them.

Useful for verifying credentials and project configuration before
pointing Power BI at the API server. Runs the interactive authorization
if no valid token is cached (unless SERVER_MODE=true).`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	twoLegged, threeLegged := buildProviders(cfg)
	client := buildACCClient(cfg, twoLegged, threeLegged)

	issues, err := client.FetchIssues(cmd.Context())
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Title", "Status", "Assigned To", "Due"})
	for _, issue := range issues {
		t.AppendRow(table.Row{issue.DisplayID, issue.Title, issue.Status, issue.AssignedName, issue.DueDate})
	}
	t.Render()

	return nil
}
