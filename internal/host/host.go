// Package host defines the collaborator surfaces a SOAR platform supplies to
// the connector, plus local implementations used when the connector runs
// standalone. The connector never owns persistence or process lifecycle; it
// talks to these interfaces only.
package host

import (
	"context"
	"log"

	"github.com/soarlink/trustar-connector/internal/artifact"
)

// StateStore persists the connector state that outlives a single action
// invocation. The blob is opaque to the host; the connector only stores the
// poll state today.
type StateStore interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// State is the connector's persisted cross-invocation state.
type State struct {
	FirstRun *bool `json:"first_run,omitempty"`
}

// FirstRunPending reports whether a scheduled poll has ever completed.
// Absent state means the first scheduled run is still pending.
func (s State) FirstRunPending() bool {
	return s.FirstRun == nil || *s.FirstRun
}

// MarkFirstRunDone records that the first scheduled poll has happened.
func (s *State) MarkFirstRunDone() {
	done := false
	s.FirstRun = &done
}

// ArtifactWriter ingests containers and artifacts. Implementations must be
// idempotent on source_data_identifier: a repeated spec returns the id of the
// existing row instead of creating a duplicate.
type ArtifactWriter interface {
	SaveContainer(ctx context.Context, spec artifact.ContainerSpec) (string, error)
	SaveArtifact(ctx context.Context, spec artifact.Spec) (string, error)
}

// Logger carries the host's progress/debug logging split. Progress messages
// are user-visible; debug messages go to the platform log only.
type Logger struct {
	progress *log.Logger
	debug    *log.Logger
}

// NewLogger builds a Logger writing both streams through std log.
func NewLogger(progress, debug *log.Logger) *Logger {
	return &Logger{progress: progress, debug: debug}
}

// SaveProgress emits a user-visible progress message.
func (l *Logger) SaveProgress(format string, v ...interface{}) {
	if l != nil && l.progress != nil {
		l.progress.Printf(format, v...)
	}
}

// DebugPrint emits a platform-log-only debug message.
func (l *Logger) DebugPrint(format string, v ...interface{}) {
	if l != nil && l.debug != nil {
		l.debug.Printf(format, v...)
	}
}
