// Package store persists ingested containers and artifacts in SQLite. It is
// the local implementation of the host's artifact/container creation surface.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/soarlink/trustar-connector/internal/artifact"
)

// Store represents the SQLite storage implementation.
type Store struct {
	db *sql.DB
}

// Container is a stored ingestion batch.
type Container struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	SourceDataIdentifier string    `json:"source_data_identifier"`
	Data                 string    `json:"data,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// Artifact is a stored observation belonging to a container.
type Artifact struct {
	ID                   string              `json:"id"`
	ContainerID          string              `json:"container_id"`
	Name                 string              `json:"name"`
	Description          string              `json:"description"`
	SourceDataIdentifier string              `json:"source_data_identifier"`
	CEF                  map[string]string   `json:"cef"`
	CEFTypes             map[string][]string `json:"cef_types"`
	RunAutomation        bool                `json:"run_automation"`
	CreatedAt            time.Time           `json:"created_at"`
}

// NewStore creates a new SQLite store instance.
func NewStore(dbPath string) (*Store, error) {
	// Ensure target directory exists (e.g., ./data)
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open(sqliteDriver, sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate performs database migrations.
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS containers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			source_data_identifier TEXT NOT NULL UNIQUE,
			data TEXT,
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			container_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			source_data_identifier TEXT NOT NULL UNIQUE,
			cef TEXT NOT NULL,
			cef_types TEXT NOT NULL,
			run_automation INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (container_id) REFERENCES containers(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_containers_sdi ON containers(source_data_identifier)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_container_id ON artifacts(container_id)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_sdi ON artifacts(source_data_identifier)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// SaveContainer inserts the container unless one with the same
// source_data_identifier exists, in which case the existing id is returned.
func (s *Store) SaveContainer(ctx context.Context, spec artifact.ContainerSpec) (string, error) {
	if existing, err := s.containerIDByIdentifier(ctx, spec.SourceDataIdentifier); err != nil {
		return "", err
	} else if existing != "" {
		return existing, nil
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO containers (id, name, description, source_data_identifier, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, spec.Name, spec.Description, spec.SourceDataIdentifier, string(spec.Data), time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to save container: %w", err)
	}
	return id, nil
}

// SaveArtifact inserts the artifact unless one with the same
// source_data_identifier exists, in which case the existing id is returned.
func (s *Store) SaveArtifact(ctx context.Context, spec artifact.Spec) (string, error) {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM artifacts WHERE source_data_identifier = ?`, spec.SourceDataIdentifier).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to query artifact: %w", err)
	}

	cef, err := json.Marshal(spec.CEF)
	if err != nil {
		return "", fmt.Errorf("failed to encode cef: %w", err)
	}
	cefTypes, err := json.Marshal(spec.CEFTypes)
	if err != nil {
		return "", fmt.Errorf("failed to encode cef_types: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, container_id, name, description, source_data_identifier,
			cef, cef_types, run_automation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, spec.ContainerID, spec.Name, spec.Description, spec.SourceDataIdentifier,
		string(cef), string(cefTypes), boolToInt(spec.RunAutomation), time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to save artifact: %w", err)
	}
	return id, nil
}

// GetContainer fetches a container by id.
func (s *Store) GetContainer(ctx context.Context, id string) (*Container, error) {
	var c Container
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, source_data_identifier, data, created_at
		 FROM containers WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.SourceDataIdentifier, &c.Data, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("container not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get container: %w", err)
	}
	c.CreatedAt = time.Unix(createdAt, 0)
	return &c, nil
}

// ListArtifacts returns all artifacts of a container in insertion order.
func (s *Store) ListArtifacts(ctx context.Context, containerID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, container_id, name, description, source_data_identifier,
			cef, cef_types, run_automation, created_at
		 FROM artifacts WHERE container_id = ? ORDER BY created_at, id`, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var a Artifact
		var cef, cefTypes string
		var runAutomation int
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.ContainerID, &a.Name, &a.Description, &a.SourceDataIdentifier,
			&cef, &cefTypes, &runAutomation, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		if err := json.Unmarshal([]byte(cef), &a.CEF); err != nil {
			return nil, fmt.Errorf("failed to decode cef: %w", err)
		}
		if err := json.Unmarshal([]byte(cefTypes), &a.CEFTypes); err != nil {
			return nil, fmt.Errorf("failed to decode cef_types: %w", err)
		}
		a.RunAutomation = runAutomation != 0
		a.CreatedAt = time.Unix(createdAt, 0)
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// CountArtifacts returns the number of artifacts in a container.
func (s *Store) CountArtifacts(ctx context.Context, containerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM artifacts WHERE container_id = ?`, containerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count artifacts: %w", err)
	}
	return count, nil
}

func (s *Store) containerIDByIdentifier(ctx context.Context, sdi string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM containers WHERE source_data_identifier = ?`, sdi).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query container: %w", err)
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
