package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the accbridge version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("accbridge version %s\n", rootCmd.Version)
		},
	}
}
