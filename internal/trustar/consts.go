package trustar

// REST endpoints exposed by the TruSTAR Station API.
const (
	endpointGenerateToken    = "/oauth/token"
	endpointCorrelateReports = "/api/1.1/reports/correlate"
	endpointReportDetails    = "/api/1.1/reports/details"
	endpointSubmitReport     = "/api/1.1/reports/submit"
	endpointSubmitReport12   = "/api/1.2/reports/submit"
	endpointLatestIndicators = "/api/1.1/indicators/latest"
)

// Default messages for the HTTP status codes the API is known to return.
// A "message" field in the response body overrides these.
var errorResponseMessages = map[int]string{
	400: "Bad request. The request is malformed or invalid",
	401: "Unauthorized. Invalid or expired credentials",
	404: "Resource not found on the server",
	413: "Request entity too large",
	500: "Internal server error occurred on the server",
	504: "Gateway timeout while waiting for the server",
}

const (
	msgOtherError      = "Error returned from the server"
	msgTokenMissing    = "Failed to generate API token: access_token missing in response"
	msgServerConn      = "Connection to the server failed"
	msgJSONParse       = "Unable to parse JSON response. Raw response: %s"
	msgUnexpectedShape = "Unexpected response from the server: %v"
	msgUnsupportedMeth = "Unsupported HTTP method: %s"
)
