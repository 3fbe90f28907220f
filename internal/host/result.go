package host

import (
	"encoding/json"
	"sync"
)

// Status of a completed action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ActionResult accumulates the structured output of one action invocation:
// data rows, summary fields, a final status with message and raw debug data.
// It is the local analog of the platform's result-reporting primitive.
type ActionResult struct {
	mu      sync.Mutex
	param   map[string]interface{}
	data    []interface{}
	summary map[string]interface{}
	debug   []map[string]interface{}
	status  Status
	message string
}

// NewActionResult creates a result for an action invoked with param.
func NewActionResult(param map[string]interface{}) *ActionResult {
	return &ActionResult{
		param:   param,
		summary: make(map[string]interface{}),
	}
}

// AddData appends one structured result row.
func (r *ActionResult) AddData(row interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, row)
}

// SetSummary sets one summary field.
func (r *ActionResult) SetSummary(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary[key] = value
}

// AddDebugData records raw request/response detail for the platform logs.
func (r *ActionResult) AddDebugData(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debug = append(r.debug, map[string]interface{}{key: value})
}

// SetStatus finalizes the action outcome.
func (r *ActionResult) SetStatus(status Status, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	r.message = message
}

// Fail finalizes the action as failed with err's message.
func (r *ActionResult) Fail(err error) {
	r.SetStatus(StatusFailed, err.Error())
}

// Status returns the final status.
func (r *ActionResult) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Message returns the final human-readable message.
func (r *ActionResult) Message() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.message
}

// Data returns the accumulated result rows.
func (r *ActionResult) Data() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interface{}(nil), r.data...)
}

// Summary returns the accumulated summary fields.
func (r *ActionResult) Summary() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]interface{}, len(r.summary))
	for k, v := range r.summary {
		out[k] = v
	}
	return out
}

// MarshalJSON renders the result the way the platform reports it.
func (r *ActionResult) MarshalJSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.Marshal(struct {
		Status  Status                 `json:"status"`
		Message string                 `json:"message,omitempty"`
		Param   map[string]interface{} `json:"parameter,omitempty"`
		Data    []interface{}          `json:"data"`
		Summary map[string]interface{} `json:"summary"`
	}{
		Status:  r.status,
		Message: r.message,
		Param:   r.param,
		Data:    r.data,
		Summary: r.summary,
	})
}
