package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soarlink/trustar-connector/internal/actions"
)

// getReportCmd fetches one report with its extracted indicators.
var getReportCmd = &cobra.Command{
	Use:   "get-report <report-id>",
	Short: "Fetch a TruSTAR report by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession(map[string]interface{}{"report_id": args[0]})
		if err != nil {
			return err
		}
		defer cleanup()
		return runAction(cmd, sess, actions.Request{Action: actions.ActionGetReport, ReportID: args[0]})
	},
}

var submitParams actions.SubmitParams

// submitReportCmd submits a report to the community or to enclaves.
var submitReportCmd = &cobra.Command{
	Use:   "submit-report",
	Short: "Submit a report to the TruSTAR Station",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession(map[string]interface{}{
			"title":             submitParams.Title,
			"distribution_type": submitParams.DistributionType,
		})
		if err != nil {
			return err
		}
		defer cleanup()
		return runAction(cmd, sess, actions.Request{Action: actions.ActionSubmitReport, Submit: &submitParams})
	},
}

func init() {
	submitReportCmd.Flags().StringVar(&submitParams.Title, "title", "", "Report title (required)")
	submitReportCmd.Flags().StringVar(&submitParams.ReportBody, "body", "", "Report body (required)")
	submitReportCmd.Flags().StringVar(&submitParams.DistributionType, "distribution", "COMMUNITY", "Distribution type (COMMUNITY or ENCLAVE)")
	submitReportCmd.Flags().StringVar(&submitParams.EnclaveIDs, "enclave-ids", "", "Comma-separated enclave ids (required for ENCLAVE)")
	submitReportCmd.Flags().StringVar(&submitParams.TimeDiscovered, "time-discovered", "", "Discovery timestamp (free-form; defaults to now)")
	submitReportCmd.Flags().StringVar(&submitParams.ExternalTrackingID, "tracking-id", "", "External tracking id (API 1.2 only)")
	submitReportCmd.Flags().StringVar(&submitParams.APIVersion, "api-version", "1.1", "Submit API version (1.1 or 1.2)")
	submitReportCmd.MarkFlagRequired("title")
	submitReportCmd.MarkFlagRequired("body")

	rootCmd.AddCommand(getReportCmd)
	rootCmd.AddCommand(submitReportCmd)
}
