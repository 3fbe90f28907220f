package actions

import (
	"context"
	"net/url"
)

// Explanation offered when a hunt finds no correlated reports.
const reasonReportUnavailable = "The provided IOC might not be present in any of the TruSTAR reports accessible to you"

// huntCorrelated runs the shared hunt template: fresh token, correlate query,
// result rows and summary.
func huntCorrelated(ctx context.Context, s *Session, ioc string) error {
	if err := s.Client.GenerateToken(ctx, 0); err != nil {
		s.Result.Fail(err)
		return err
	}

	reportIDs, err := s.Client.CorrelatedReports(ctx, ioc)
	if err != nil {
		s.Result.Fail(err)
		return err
	}

	s.Result.SetSummary("total_correlated_reports", len(reportIDs))
	if len(reportIDs) == 0 {
		s.Result.SetSummary("possible_reason", reasonReportUnavailable)
	}

	for _, reportID := range reportIDs {
		s.Result.AddData(map[string]interface{}{"report_id": reportID})
	}

	s.Result.SetStatus("success", "")
	return nil
}

// HuntIP lists report ids correlated with the given IP or CIDR block.
func HuntIP(ctx context.Context, s *Session, ip string) error {
	if s.ValidateIP != nil && !s.ValidateIP(ip) {
		err := invalidParam("ip", ip)
		s.Result.Fail(err)
		return err
	}
	return huntCorrelated(ctx, s, ip)
}

// HuntURL lists report ids correlated with the given URL.
func HuntURL(ctx context.Context, s *Session, u string) error {
	return huntCorrelated(ctx, s, u)
}

// HuntDomain lists report ids correlated with the given domain. A full URL
// is accepted; its host part is hunted.
func HuntDomain(ctx context.Context, s *Session, domain string) error {
	if parsed, err := url.Parse(domain); err == nil &&
		(parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Hostname() != "" {
		domain = parsed.Hostname()
	}
	return huntCorrelated(ctx, s, domain)
}

// HuntFile lists report ids correlated with the given file hash.
func HuntFile(ctx context.Context, s *Session, hash string) error {
	return huntCorrelated(ctx, s, hash)
}

// HuntEmail lists report ids correlated with the given email address.
func HuntEmail(ctx context.Context, s *Session, email string) error {
	return huntCorrelated(ctx, s, email)
}

// HuntCVE lists report ids correlated with the given CVE number.
func HuntCVE(ctx context.Context, s *Session, cve string) error {
	return huntCorrelated(ctx, s, cve)
}

// HuntMalware lists report ids correlated with the given malware name.
func HuntMalware(ctx context.Context, s *Session, malware string) error {
	return huntCorrelated(ctx, s, malware)
}

// HuntRegistryKey lists report ids correlated with the given registry key.
func HuntRegistryKey(ctx context.Context, s *Session, key string) error {
	return huntCorrelated(ctx, s, key)
}
