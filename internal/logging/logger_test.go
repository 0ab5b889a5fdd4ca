package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "debug", expected: "DEBUG"},
		{input: "info", expected: "INFO"},
		{input: "WARN", expected: "WARN"},
		{input: "warning", expected: "WARN"},
		{input: "error", expected: "ERROR"},
		{input: "bogus", expected: "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input).String())
		})
	}
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployment.log")

	closer, err := InitWithFile("info", path)
	require.NoError(t, err)

	Info("before close")
	require.NoError(t, closer())

	// The closer restores a stderr-only logger; logging after it must not
	// touch the closed file.
	Info("after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "before close")
	assert.NotContains(t, string(data), "after close")
}
