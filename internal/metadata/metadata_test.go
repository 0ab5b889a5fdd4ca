package metadata

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, Record{
		DeploymentID: "20260830-120000",
		Environment:  "dev",
		Region:       "us-east-1",
		Modules:      []string{"networking"},
		Success:      true,
		PlanSummary:  "Total changes: 3 resources",
	})
	require.NoError(t, err)
	assert.Contains(t, path, "deployment_metadata_20260830-120000.json")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec Record
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "dev", rec.Environment)
	assert.True(t, rec.Success)
	assert.NotEmpty(t, rec.Timestamp)
	assert.Empty(t, rec.Error)
}

func TestWriteFailureRecord(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, Record{
		DeploymentID: "20260830-130000",
		Environment:  "prod",
		Region:       "us-west-2",
		Error:        "apply failed: exit status 1",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec Record
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.False(t, rec.Success)
	assert.Equal(t, "apply failed: exit status 1", rec.Error)
}
