package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soarlink/trustar-connector/internal/artifact"
	"github.com/soarlink/trustar-connector/internal/trustar"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePayload() *trustar.LatestIndicators {
	return &trustar.LatestIndicators{
		Source:       "osint",
		IntervalSize: 24,
		QueryDate:    json.Number("1487890914000"),
		Indicators: map[string][]string{
			"IP":  {"8.8.8.8"},
			"MD5": {"d41d8cd98f00b204e9800998ecf8427e"},
		},
	}
}

func TestNewStore(t *testing.T) {
	store := newTestStore(t)

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "Expected tables to be created")
}

func TestSaveContainerDeduplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	spec := artifact.MapContainer(samplePayload())

	first, err := store.SaveContainer(ctx, spec)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := store.SaveContainer(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, first, second, "repeated batch must reuse the container")

	container, err := store.GetContainer(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "osint-24-1487890914000", container.Name)
	assert.Equal(t, "osint", container.Description)
}

func TestSaveArtifactIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payload := samplePayload()
	containerID, err := store.SaveContainer(ctx, artifact.MapContainer(payload))
	require.NoError(t, err)

	specs := artifact.MapArtifacts(payload, containerID, payload.TotalIndicators())
	require.Len(t, specs, 2)

	var ids []string
	for _, spec := range specs {
		id, err := store.SaveArtifact(ctx, spec)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	// Re-ingesting identical specs returns the existing rows.
	for i, spec := range specs {
		id, err := store.SaveArtifact(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, ids[i], id)
	}

	count, err := store.CountArtifacts(ctx, containerID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestListArtifactsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payload := samplePayload()
	containerID, err := store.SaveContainer(ctx, artifact.MapContainer(payload))
	require.NoError(t, err)

	for _, spec := range artifact.MapArtifacts(payload, containerID, payload.TotalIndicators()) {
		_, err := store.SaveArtifact(ctx, spec)
		require.NoError(t, err)
	}

	artifacts, err := store.ListArtifacts(ctx, containerID)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	automated := 0
	for _, a := range artifacts {
		assert.Equal(t, containerID, a.ContainerID)
		assert.NotEmpty(t, a.CEF)
		assert.NotEmpty(t, a.CEFTypes)
		if a.RunAutomation {
			automated++
		}
	}
	assert.Equal(t, 1, automated, "exactly one artifact triggers automation")
}
