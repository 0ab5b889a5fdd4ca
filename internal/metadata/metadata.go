// Package metadata records the outcome of each deployment as a JSON file
// next to the project, so past runs can be inspected and diffed.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record is one deployment's metadata.
type Record struct {
	DeploymentID string   `json:"deployment_id"`
	Timestamp    string   `json:"timestamp"`
	Environment  string   `json:"environment"`
	Region       string   `json:"region"`
	Modules      []string `json:"modules"`
	Success      bool     `json:"success"`
	PlanSummary  string   `json:"plan_summary,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Write persists the record as deployment_metadata_<id>.json in dir and
// returns the file path. The timestamp is filled in if unset.
func Write(dir string, rec Record) (string, error) {
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal deployment metadata: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("deployment_metadata_%s.json", rec.DeploymentID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write deployment metadata: %w", err)
	}
	return path, nil
}
