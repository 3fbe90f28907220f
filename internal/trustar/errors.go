package trustar

import "fmt"

// ErrorKind classifies a failed call against the Station API.
type ErrorKind int

const (
	// KindTransport covers DNS, connect and timeout failures.
	KindTransport ErrorKind = iota
	// KindProtocol covers unsupported methods, malformed JSON on a
	// JSON-typed response and non-object/array bodies on 2xx statuses.
	KindProtocol
	// KindRemote covers structured 4xx/5xx responses.
	KindRemote
	// KindAuth covers token-generation failures.
	KindAuth
	// KindValidation covers locally rejected action parameters.
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindRemote:
		return "remote"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

// Error is the single error type surfaced by the client. StatusCode is zero
// unless the failure was a structured HTTP error response.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("error from server. Status code: %d, details: %s", e.StatusCode, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

func newRemoteError(status int, msg string) *Error {
	return &Error{Kind: KindRemote, StatusCode: status, Message: msg}
}

// NewValidationError reports a locally rejected parameter before any network
// call is attempted.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// KindOf returns the classification of err, or KindTransport, false for
// errors that did not originate from this package.
func KindOf(err error) (ErrorKind, bool) {
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return KindTransport, false
}
