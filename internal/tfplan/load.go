package tfplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidInput marks a plan document that could not be read or that is
// structurally unusable (missing file, malformed JSON, change entries with
// no actions). Callers should treat it as fatal: there is nothing to
// summarize.
var ErrInvalidInput = errors.New("invalid plan input")

// Load decodes a plan JSON document from r.
func Load(r io.Reader) (*Plan, error) {
	var plan Plan
	dec := json.NewDecoder(r)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("%w: malformed plan JSON: %v", ErrInvalidInput, err)
	}
	return &plan, nil
}

// LoadFile reads and decodes a plan JSON file.
func LoadFile(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: plan file not found: %s", ErrInvalidInput, path)
		}
		return nil, fmt.Errorf("failed to open plan file %s: %w", path, err)
	}
	defer f.Close()

	plan, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return plan, nil
}
