package actions

import (
	"context"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/soarlink/trustar-connector/internal/trustar"
)

const (
	msgBadTimeFormat    = "Unable to parse the time_discovered parameter"
	msgMissingEnclaveID = "At least one enclave id is required when distribution type is ENCLAVE"
)

// GetReport fetches one report and rewrites each extracted indicator from
// {indicatorType, value} to {<indicatorType>: value}.
func GetReport(ctx context.Context, s *Session, reportID string) error {
	if err := s.Client.GenerateToken(ctx, 0); err != nil {
		s.Result.Fail(err)
		return err
	}

	report, err := s.Client.ReportDetails(ctx, reportID)
	if err != nil {
		s.Result.Fail(err)
		return err
	}

	indicators := make([]map[string]string, 0, len(report.Indicators))
	for _, indicator := range report.Indicators {
		indicators = append(indicators, map[string]string{indicator.IndicatorType: indicator.Value})
	}

	s.Result.AddData(map[string]interface{}{
		"id":               report.ID,
		"title":            report.Title,
		"reportBody":       report.ReportBody,
		"distributionType": report.DistributionType,
		"timeBegan":        report.TimeBegan,
		"created":          report.Created,
		"updated":          report.Updated,
		"enclaveIds":       report.EnclaveIDs,
		"indicators":       indicators,
	})
	s.Result.SetSummary("extracted_indicators_count", len(indicators))
	s.Result.SetStatus("success", "")
	return nil
}

// SubmitParams are the parameters of the submit_report action.
type SubmitParams struct {
	Title              string
	ReportBody         string
	DistributionType   string
	EnclaveIDs         string // comma-separated
	TimeDiscovered     string
	ExternalTrackingID string
	APIVersion         string // defaults to "1.1"
}

// SubmitReport submits a report to the community or to enclaves. Validation
// happens before any network call: the discovery timestamp must normalize and
// ENCLAVE distribution requires at least one enclave id.
func SubmitReport(ctx context.Context, s *Session, p SubmitParams) error {
	timeBegan, err := normalizeTimestamp(p.TimeDiscovered)
	if err != nil {
		verr := trustar.NewValidationError(msgBadTimeFormat)
		s.Result.Fail(verr)
		return verr
	}

	if p.DistributionType == "ENCLAVE" && p.EnclaveIDs == "" {
		verr := trustar.NewValidationError(msgMissingEnclaveID)
		s.Result.Fail(verr)
		return verr
	}

	if p.APIVersion == "" {
		p.APIVersion = "1.1"
	}

	req := trustar.SubmitReportRequest{
		IncidentReport: trustar.IncidentReport{
			Title:            p.Title,
			ReportBody:       p.ReportBody,
			DistributionType: p.DistributionType,
			TimeDiscovered:   timeBegan,
		},
	}
	if p.EnclaveIDs != "" {
		req.EnclaveIDs = strings.Split(p.EnclaveIDs, ",")
	}
	// Only the 1.2 endpoint understands the external tracking id.
	if p.APIVersion == "1.2" && p.ExternalTrackingID != "" {
		req.IncidentReport.ExternalTrackingID = p.ExternalTrackingID
	}

	if err := s.Client.GenerateToken(ctx, 0); err != nil {
		s.Result.Fail(err)
		return err
	}

	resp, err := s.Client.SubmitReport(ctx, req, p.APIVersion)
	if err != nil {
		s.Result.Fail(err)
		return err
	}

	s.Result.AddData(resp)

	indicatorsCount := 0
	for _, values := range resp.ReportIndicators {
		indicatorsCount += len(values)
	}
	s.Result.SetSummary("report_id", resp.ReportID.String())
	s.Result.SetSummary("total_extracted_indicators", indicatorsCount)
	s.Result.SetStatus("success", "")
	return nil
}

// normalizeTimestamp converts a free-form timestamp into canonical UTC
// ISO-8601. A timestamp without timezone is taken to be in the local zone.
// An empty input means "now". Normalization is idempotent: an already-UTC
// ISO-8601 input yields the same instant.
func normalizeTimestamp(value string) (string, error) {
	parsed := time.Now()
	if strings.TrimSpace(value) != "" {
		var err error
		parsed, err = dateparse.ParseIn(value, time.Local)
		if err != nil {
			return "", err
		}
	}
	return parsed.UTC().Format(time.RFC3339), nil
}
