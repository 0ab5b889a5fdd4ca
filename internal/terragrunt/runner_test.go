package terragrunt

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanArgs(t *testing.T) {
	tests := []struct {
		name     string
		outFile  string
		destroy  bool
		all      bool
		expected []string
	}{
		{
			name:     "single module",
			outFile:  "plan.out",
			expected: []string{"plan", "-detailed-exitcode", "-out=plan.out"},
		},
		{
			name:     "run-all",
			outFile:  "plan.out",
			all:      true,
			expected: []string{"run-all", "plan", "-detailed-exitcode", "-out=plan.out"},
		},
		{
			name:     "destroy",
			outFile:  "plan.out",
			destroy:  true,
			expected: []string{"plan", "-detailed-exitcode", "-destroy", "-out=plan.out"},
		},
		{
			name:     "no out file",
			expected: []string{"plan", "-detailed-exitcode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, planArgs(tt.outFile, tt.destroy, tt.all))
		})
	}
}

// fakeBin writes a shell script that exits with the given code so the
// detailed-exitcode handling can run against a real process.
func fakeBin(t *testing.T, exitCode string) string {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/terragrunt"
	script := "#!/bin/sh\nexit " + exitCode + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestPlanExitCodes(t *testing.T) {
	tests := []struct {
		name        string
		exitCode    string
		wantChanges bool
		wantErr     bool
	}{
		{name: "clean", exitCode: "0", wantChanges: false},
		{name: "changes pending", exitCode: "2", wantChanges: true},
		{name: "failure", exitCode: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner()
			r.TerragruntBin = fakeBin(t, tt.exitCode)

			changes, err := r.Plan(context.Background(), t.TempDir(), "plan.out", false)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanges, changes)
		})
	}
}

func TestIntegrationTests(t *testing.T) {
	bin := t.TempDir() + "/go"
	script := "#!/bin/sh\necho \"$ENVIRONMENT $AWS_REGION\" > env.txt\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))

	r := NewRunner()
	r.GoBin = bin
	testDir := t.TempDir()

	require.NoError(t, r.IntegrationTests(context.Background(), testDir, "staging", "us-west-2"))

	data, err := os.ReadFile(testDir + "/env.txt")
	require.NoError(t, err)
	assert.Equal(t, "staging us-west-2\n", string(data))
}

func TestIntegrationTestsFailure(t *testing.T) {
	r := NewRunner()
	r.GoBin = fakeBin(t, "1")

	err := r.IntegrationTests(context.Background(), t.TempDir(), "dev", "us-east-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integration tests failed")
}

func TestVersionProbe(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/terraform"
	script := "#!/bin/sh\necho 'Terraform v1.9.5'\necho 'on linux_amd64'\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))

	r := NewRunner()
	r.TerraformBin = path

	version, err := r.TerraformVersion(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "Terraform v1.9.5", version)
	assert.False(t, strings.Contains(version, "\n"))
}
