package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ToolInfo describes one registered tool for listing purposes.
type ToolInfo struct {
	ID          string
	DisplayName string
}

func NewToolsCmd(known []ToolInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available audit tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(known) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tools available.")
				return nil
			}
			for _, t := range known {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", t.ID, t.DisplayName)
			}
			return nil
		},
	}
}
