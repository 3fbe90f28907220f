package trustar

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DebugSink receives raw request/response details for troubleshooting.
// The host's action result implements it; a nil sink disables recording.
type DebugSink interface {
	AddDebugData(key string, value interface{})
}

// BasicAuth is a client id/secret pair, used only for token generation.
type BasicAuth struct {
	Username string
	Password string
}

// Request describes one call against the Station API.
type Request struct {
	Method   string
	Endpoint string
	Headers  map[string]string
	Query    url.Values
	Body     []byte
	Timeout  time.Duration // zero means the client default
	Auth     *BasicAuth    // overrides the bearer header when set
}

// ClientOptions configures a Station API client.
type ClientOptions struct {
	Credentials Credentials
	VerifyTLS   bool
	Timeout     time.Duration
	Logger      *log.Logger
	Debug       DebugSink
}

// Client talks to the TruSTAR Station API. It holds the short-lived bearer
// token for the current action; GenerateToken must be called before any data
// call. Not safe for concurrent use; the host serializes action invocations.
type Client struct {
	creds      Credentials
	token      string
	httpClient *http.Client
	logger     *log.Logger
	debug      DebugSink
}

// NewClient creates a Station API client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Credentials.BaseURL == "" {
		return nil, fmt.Errorf("station base URL is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	tr := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
	if !opts.VerifyTLS {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		creds:      opts.Credentials,
		httpClient: &http.Client{Timeout: opts.Timeout, Transport: tr},
		logger:     logger,
		debug:      opts.Debug,
	}, nil
}

// SetDebugSink attaches a sink for raw response details.
func (c *Client) SetDebugSink(sink DebugSink) { c.debug = sink }

// Token returns the bearer token held for the current action, if any.
func (c *Client) Token() string { return c.token }

// BaseURL returns the configured Station base URL.
func (c *Client) BaseURL() string { return c.creds.BaseURL }

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// Execute performs one REST call and normalizes the outcome. On success the
// returned payload is guaranteed to be a JSON object or array. Errors carry
// the classification of errors.go; for structured HTTP errors the response's
// "message" field overrides the default text for that status code.
func (c *Client) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	if !supportedMethods[req.Method] {
		c.logger.Printf(msgUnsupportedMeth, req.Method)
		return nil, newError(KindProtocol, fmt.Sprintf(msgUnsupportedMeth, req.Method), nil)
	}

	fullURL := strings.TrimRight(c.creds.BaseURL, "/") + req.Endpoint
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, newError(KindTransport, msgServerConn, err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Auth != nil {
		httpReq.SetBasicAuth(req.Auth.Username, req.Auth.Password)
	} else {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Printf("%s: %v", msgServerConn, err)
		return nil, newError(KindTransport, msgServerConn, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindTransport, msgServerConn, err)
	}

	if c.debug != nil {
		c.debug.AddDebugData("r_status_code", resp.StatusCode)
		c.debug.AddDebugData("r_text", string(raw))
		c.debug.AddDebugData("r_headers", resp.Header)
	}

	// The body is parsed as JSON only when the server says it is JSON;
	// anything else stays opaque text and can never satisfy the success
	// shape check below.
	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "json")
	var payload json.RawMessage
	if isJSON {
		if !json.Valid(raw) {
			msg := fmt.Sprintf(msgJSONParse, string(raw))
			c.logger.Print(msg)
			return nil, newError(KindProtocol, msg, nil)
		}
		payload = json.RawMessage(bytes.TrimSpace(raw))
	}

	if defaultMsg, known := errorResponseMessages[resp.StatusCode]; known {
		msg := overrideMessage(payload, defaultMsg)
		c.logger.Printf("error from server. Status code: %d, details: %s", resp.StatusCode, msg)
		return payload, newRemoteError(resp.StatusCode, msg)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if shapeIsStructured(payload) {
			return payload, nil
		}
		msg := fmt.Sprintf(msgUnexpectedShape, string(raw))
		c.logger.Print(msg)
		return payload, newError(KindProtocol, msg, nil)
	}

	// Any other status code.
	msg := overrideMessage(payload, msgOtherError)
	c.logger.Printf("error from server. Status code: %d, details: %s", resp.StatusCode, msg)
	return payload, newRemoteError(resp.StatusCode, msg)
}

// shapeIsStructured reports whether the payload is a JSON object or array.
func shapeIsStructured(payload json.RawMessage) bool {
	if len(payload) == 0 {
		return false
	}
	return payload[0] == '{' || payload[0] == '['
}

// overrideMessage prefers the "message" field of an object payload.
func overrideMessage(payload json.RawMessage, defaultMsg string) string {
	if len(payload) == 0 || payload[0] != '{' {
		return defaultMsg
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Message == "" {
		return defaultMsg
	}
	return body.Message
}

// GenerateToken exchanges the client credentials for a fresh bearer token.
// It is called before every remote action; tokens are never reused across
// actions. A non-zero timeout is applied only by the connectivity test.
func (c *Client) GenerateToken(ctx context.Context, timeout time.Duration) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	payload, err := c.Execute(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: endpointGenerateToken,
		Headers:  map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:     []byte(form.Encode()),
		Timeout:  timeout,
		Auth:     &BasicAuth{Username: c.creds.ClientID, Password: c.creds.ClientSecret},
	})
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Kind = KindAuth
			return e
		}
		return err
	}

	var tok tokenResponse
	if err := json.Unmarshal(payload, &tok); err != nil || tok.AccessToken == "" {
		c.logger.Print(msgTokenMissing)
		return newError(KindAuth, msgTokenMissing, nil)
	}
	c.token = tok.AccessToken
	return nil
}

// CorrelatedReports returns the ids of all reports correlated with the IOC.
func (c *Client) CorrelatedReports(ctx context.Context, ioc string) ([]string, error) {
	query := url.Values{}
	query.Set("q", ioc)

	payload, err := c.Execute(ctx, Request{
		Method:   http.MethodGet,
		Endpoint: endpointCorrelateReports,
		Query:    query,
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(payload, &ids); err != nil {
		return nil, newError(KindProtocol, fmt.Sprintf(msgUnexpectedShape, string(payload)), err)
	}
	return ids, nil
}

// ReportDetails fetches a single report by id.
func (c *Client) ReportDetails(ctx context.Context, reportID string) (*Report, error) {
	query := url.Values{}
	query.Set("id", reportID)

	payload, err := c.Execute(ctx, Request{
		Method:   http.MethodGet,
		Endpoint: endpointReportDetails,
		Query:    query,
	})
	if err != nil {
		return nil, err
	}

	var report Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, newError(KindProtocol, fmt.Sprintf(msgUnexpectedShape, string(payload)), err)
	}
	return &report, nil
}

// SubmitReport submits a report to the community or to enclaves. The 1.2
// endpoint is selected when apiVersion is "1.2"; it is the only version that
// understands the external tracking id.
func (c *Client) SubmitReport(ctx context.Context, req SubmitReportRequest, apiVersion string) (*SubmitReportResponse, error) {
	endpoint := endpointSubmitReport
	if apiVersion == "1.2" {
		endpoint = endpointSubmitReport12
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, newError(KindProtocol, "failed to encode submit request", err)
	}

	payload, err := c.Execute(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Headers:  map[string]string{"Content-Type": "application/json"},
		Body:     body,
	})
	if err != nil {
		return nil, err
	}

	var resp SubmitReportResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, newError(KindProtocol, fmt.Sprintf(msgUnexpectedShape, string(payload)), err)
	}
	return &resp, nil
}

// LatestIndicators fetches the indicators shared in the last intervalSize
// hours. A zero intervalSize omits the filter and uses the server default.
func (c *Client) LatestIndicators(ctx context.Context, intervalSize int) (*LatestIndicators, error) {
	var query url.Values
	if intervalSize > 0 {
		query = url.Values{}
		query.Set("intervalSize", fmt.Sprintf("%d", intervalSize))
	}

	payload, err := c.Execute(ctx, Request{
		Method:   http.MethodGet,
		Endpoint: endpointLatestIndicators,
		Query:    query,
	})
	if err != nil {
		return nil, err
	}

	var latest LatestIndicators
	if err := json.Unmarshal(payload, &latest); err != nil {
		return nil, newError(KindProtocol, fmt.Sprintf(msgUnexpectedShape, string(payload)), err)
	}
	return &latest, nil
}
