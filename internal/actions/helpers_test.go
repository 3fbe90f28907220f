package actions

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/soarlink/trustar-connector/internal/artifact"
	"github.com/soarlink/trustar-connector/internal/host"
	"github.com/soarlink/trustar-connector/internal/trustar"
)

// memStateStore keeps state in memory for handler tests.
type memStateStore struct {
	state host.State
	saves int
}

func (m *memStateStore) Load(ctx context.Context) (host.State, error) { return m.state, nil }

func (m *memStateStore) Save(ctx context.Context, state host.State) error {
	m.state = state
	m.saves++
	return nil
}

// fakeArtifactWriter records saved specs and can be told to fail.
type fakeArtifactWriter struct {
	containers    []artifact.ContainerSpec
	artifacts     []artifact.Spec
	failContainer bool
	failArtifacts int // fail the first n artifact saves
}

func (f *fakeArtifactWriter) SaveContainer(ctx context.Context, spec artifact.ContainerSpec) (string, error) {
	if f.failContainer {
		return "", errors.New("container save failed")
	}
	f.containers = append(f.containers, spec)
	return "container-1", nil
}

func (f *fakeArtifactWriter) SaveArtifact(ctx context.Context, spec artifact.Spec) (string, error) {
	if f.failArtifacts > 0 {
		f.failArtifacts--
		return "", errors.New("artifact save failed")
	}
	f.artifacts = append(f.artifacts, spec)
	return "artifact-1", nil
}

// newTestSession builds a session against a mock Station server.
func newTestSession(t *testing.T, baseURL string) (*Session, *fakeArtifactWriter, *memStateStore) {
	t.Helper()
	client, err := trustar.NewClient(trustar.ClientOptions{
		Credentials: trustar.Credentials{
			BaseURL:      baseURL,
			ClientID:     "test-client",
			ClientSecret: "test-secret",
		},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	writer := &fakeArtifactWriter{}
	states := &memStateStore{}
	discard := log.New(io.Discard, "", 0)
	return &Session{
		Client:    client,
		Result:    host.NewActionResult(nil),
		States:    states,
		Artifacts: writer,
		Logger:    host.NewLogger(discard, discard),
	}, writer, states
}
