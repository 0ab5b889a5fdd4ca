package tfplan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlan = `{
  "format_version": "1.2",
  "terraform_version": "1.9.5",
  "resource_changes": [
    {
      "address": "aws_s3_bucket.data",
      "type": "aws_s3_bucket",
      "name": "data",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {"actions": ["create"], "before": null, "after": {"bucket": "data"}}
    },
    {
      "address": "module.network.aws_subnet.private",
      "module_address": "module.network",
      "type": "aws_subnet",
      "name": "private",
      "change": {"actions": ["delete", "create"], "before": {}, "after": {}}
    }
  ]
}`

func TestLoad(t *testing.T) {
	plan, err := Load(strings.NewReader(samplePlan))
	require.NoError(t, err)

	assert.Equal(t, "1.9.5", plan.TerraformVersion)
	require.Len(t, plan.ResourceChanges, 2)

	first := plan.ResourceChanges[0]
	assert.Equal(t, "aws_s3_bucket", first.Type)
	assert.Equal(t, []string{"create"}, first.Change.Actions)
	assert.Equal(t, "root", first.Module())

	second := plan.ResourceChanges[1]
	assert.Equal(t, []string{"delete", "create"}, second.Change.Actions)
	assert.Equal(t, "module.network", second.Module())
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader("{not json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoadEmptyPlan(t *testing.T) {
	plan, err := Load(strings.NewReader(`{"resource_changes": []}`))
	require.NoError(t, err)
	assert.Empty(t, plan.ResourceChanges)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePlan), 0644))

	plan, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, plan.ResourceChanges, 2)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
