// Package artifact normalizes TruSTAR indicator payloads into the host
// platform's artifact and container shapes.
package artifact

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/soarlink/trustar-connector/internal/trustar"
)

// Spec is one artifact ready for ingestion by the host.
type Spec struct {
	Name                 string              `json:"name"`
	Description          string              `json:"description"`
	CEF                  map[string]string   `json:"cef"`
	CEFTypes             map[string][]string `json:"cef_types"`
	ContainerID          string              `json:"container_id"`
	RunAutomation        bool                `json:"run_automation,omitempty"`
	SourceDataIdentifier string              `json:"source_data_identifier"`
}

// ContainerSpec is the batch-level record grouping one ingestion run.
type ContainerSpec struct {
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	Data                 json.RawMessage `json:"data,omitempty"`
	SourceDataIdentifier string          `json:"source_data_identifier"`
}

// cefEntry maps one indicator type onto its artifact shape.
type cefEntry struct {
	indicatorType string
	artifactName  string
	cefName       string
	cefContains   []string
}

// Mapping of every indicator type the Station emits. Order is fixed so that
// repeated ingestions of the same payload emit artifacts in the same order.
var cefMapping = []cefEntry{
	{"SHA256", "File Artifact", "fileHashSha256", []string{"sha256"}},
	{"SHA1", "File Artifact", "fileHashSha1", []string{"sha1"}},
	{"MD5", "File Artifact", "fileHashMd5", []string{"md5"}},
	{"SOFTWARE", "File Artifact", "filePath", []string{"file name", "file path"}},
	{"EMAIL_ADDRESS", "Email Artifact", "email", []string{"email"}},
	{"IP", "IP Artifact", "destinationAddress", []string{"ip"}},
	{"CIDR_BLOCK", "IP Artifact", "destinationAddress", []string{"ip"}},
	{"DOMAIN", "Domain Artifact", "destinationDnsDomain", []string{"domain"}},
	{"URL", "URL Artifact", "requestURL", []string{"url"}},
	{"MALWARE", "Malware Artifact", "malware", []string{"trustar malware"}},
	{"CVE", "CVE Artifact", "cs3", []string{"trustar cve number"}},
	{"REGISTRY_KEY", "Registry Key Artifact", "registryKey", []string{"trustar registry key"}},
}

const artifactDescription = "TruSTAR artifacts"

// MapContainer derives the batch container for an ingestion payload. The
// identifier repeats the name so the host deduplicates repeated ingestions
// of the same batch.
func MapContainer(iocs *trustar.LatestIndicators) ContainerSpec {
	name := fmt.Sprintf("%s-%d-%s", iocs.Source, iocs.IntervalSize, iocs.QueryDate.String())
	data, _ := json.Marshal(iocs)
	return ContainerSpec{
		Name:                 name,
		Description:          iocs.Source,
		Data:                 data,
		SourceDataIdentifier: name,
	}
}

// MapArtifacts turns every indicator value in the payload into one Spec.
// The artifact whose 1-based emission index equals expectedCount carries the
// run_automation flag; ordering within a type's value list is preserved.
func MapArtifacts(iocs *trustar.LatestIndicators, containerID string, expectedCount int) []Spec {
	var specs []Spec
	created := 0
	for _, entry := range cefMapping {
		values := iocs.Indicators[entry.indicatorType]
		for _, value := range values {
			created++
			spec := Spec{
				Name:          entry.artifactName,
				Description:   artifactDescription,
				CEF:           map[string]string{entry.cefName: value},
				CEFTypes:      map[string][]string{entry.cefName: entry.cefContains},
				ContainerID:   containerID,
				RunAutomation: created == expectedCount,
			}
			spec.SourceDataIdentifier = identityHash(spec)
			specs = append(specs, spec)
		}
	}
	return specs
}

// identityHash computes the md5 identifier over the fully-populated artifact
// fields, canonicalized as sorted-key JSON. Two structurally identical
// artifacts collapse to the same identifier.
func identityHash(spec Spec) string {
	fields := map[string]interface{}{
		"name":         spec.Name,
		"description":  spec.Description,
		"cef":          spec.CEF,
		"cef_types":    spec.CEFTypes,
		"container_id": spec.ContainerID,
	}
	if spec.RunAutomation {
		fields["run_automation"] = true
	}
	// Map keys marshal in sorted order.
	canonical, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	sum := md5.Sum(canonical) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
