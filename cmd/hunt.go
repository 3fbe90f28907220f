package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soarlink/trustar-connector/internal/actions"
)

// huntActions maps the hunt subcommand's indicator kind to its action.
var huntActions = map[string]struct {
	action actions.Action
	short  string
}{
	"ip":           {actions.ActionHuntIP, "Hunt reports correlated with an IP or CIDR block"},
	"url":          {actions.ActionHuntURL, "Hunt reports correlated with a URL"},
	"domain":       {actions.ActionHuntDomain, "Hunt reports correlated with a domain"},
	"file":         {actions.ActionHuntFile, "Hunt reports correlated with a file hash"},
	"email":        {actions.ActionHuntEmail, "Hunt reports correlated with an email address"},
	"cve":          {actions.ActionHuntCVE, "Hunt reports correlated with a CVE number"},
	"malware":      {actions.ActionHuntMalware, "Hunt reports correlated with a malware name"},
	"registry-key": {actions.ActionHuntRegistryKey, "Hunt reports correlated with a registry key"},
}

var huntCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Hunt TruSTAR reports correlated with an indicator",
}

func init() {
	for kind, entry := range huntActions {
		entry := entry
		sub := &cobra.Command{
			Use:   fmt.Sprintf("%s <value>", kind),
			Short: entry.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sess, cleanup, err := newSession(map[string]interface{}{"value": args[0]})
				if err != nil {
					return err
				}
				defer cleanup()
				return runAction(cmd, sess, actions.Request{Action: entry.action, IOC: args[0]})
			},
		}
		huntCmd.AddCommand(sub)
	}
	rootCmd.AddCommand(huntCmd)
}
