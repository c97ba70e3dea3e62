package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	build "github.com/thoreinstein/mcpkit/cmd"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, and build date of mcpkit.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := build.Info()
		if jsonOutput {
			data, err := json.Marshal(info)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), info)
		return err
	},
}
