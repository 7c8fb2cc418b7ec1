package cli

import (
	"encoding/json"
	"fmt"

	"github.com/allyourbase/demobundle/internal/cli/ui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print demobundle version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput(cmd) {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"version": buildVersion,
				"commit":  buildCommit,
				"date":    buildDate,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s demobundle %s (commit: %s, built: %s)\n", ui.BrandEmoji, buildVersion, buildCommit, buildDate)
		return nil
	},
}
