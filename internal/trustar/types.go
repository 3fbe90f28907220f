package trustar

import "encoding/json"

// Credentials identify one Station asset. Immutable for the life of a session.
type Credentials struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

// tokenResponse is the body of a successful client-credentials grant.
// Extra fields (token_type, expires_in, scope) are ignored.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Indicator is one extracted IOC inside a report.
type Indicator struct {
	IndicatorType string `json:"indicatorType"`
	Value         string `json:"value"`
}

// Report is the detail payload returned for a single report id.
// Unknown fields are dropped; the API adds fields between minor versions.
type Report struct {
	ID               string      `json:"id,omitempty"`
	Title            string      `json:"title,omitempty"`
	ReportBody       string      `json:"reportBody,omitempty"`
	DistributionType string      `json:"distributionType,omitempty"`
	TimeBegan        string      `json:"timeBegan,omitempty"`
	Created          json.Number `json:"created,omitempty"`
	Updated          json.Number `json:"updated,omitempty"`
	EnclaveIDs       []string    `json:"enclaveIds,omitempty"`
	Indicators       []Indicator `json:"indicators,omitempty"`
}

// IncidentReport is the inner record of a report submission.
type IncidentReport struct {
	Title              string `json:"title"`
	ReportBody         string `json:"reportBody"`
	DistributionType   string `json:"distributionType"`
	TimeDiscovered     string `json:"timeDiscovered"`
	ExternalTrackingID string `json:"externalTrackingId,omitempty"`
}

// SubmitReportRequest is the request body for both submit endpoints.
type SubmitReportRequest struct {
	IncidentReport IncidentReport `json:"incidentReport"`
	EnclaveIDs     []string       `json:"enclaveIds,omitempty"`
}

// SubmitReportResponse carries the new report id and the indicators the
// Station extracted from the submitted body, keyed by indicator type.
type SubmitReportResponse struct {
	ReportID         json.Number         `json:"reportId"`
	ReportIndicators map[string][]string `json:"reportIndicators"`
}

// LatestIndicators is the ingestion payload of /indicators/latest.
type LatestIndicators struct {
	Source       string              `json:"source"`
	IntervalSize int                 `json:"intervalSize"`
	QueryDate    json.Number         `json:"queryDate"`
	Indicators   map[string][]string `json:"indicators"`
}

// TotalIndicators counts indicator values across all types.
func (l *LatestIndicators) TotalIndicators() int {
	total := 0
	for _, values := range l.Indicators {
		total += len(values)
	}
	return total
}
