package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soarlink/trustar-connector/internal/actions"
)

// testCmd verifies the configured asset credentials.
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connectivity to the configured TruSTAR Station",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession(nil)
		if err != nil {
			return err
		}
		defer cleanup()
		return runAction(cmd, sess, actions.Request{Action: actions.ActionTestConnectivity})
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
