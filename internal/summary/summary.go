// Package summary classifies the changes in a Terraform plan and renders
// aggregate counts as text, Markdown, or JSON. Aggregation and rendering
// are separate pure steps: Summarize produces an immutable tally set,
// Render turns one into a report string. Neither performs I/O.
package summary

import (
	"fmt"
	"strings"

	"github.com/tfdeploy-io/tfdeploy/internal/tfplan"
)

// ActionKey is the ordered action sequence of one resource change, in its
// canonical underscore-joined form (e.g. "create", "delete_create").
// Order is preserved: both replacement variants stay distinct keys even
// though they render under the same label.
type ActionKey string

// KeyFor builds the canonical key for an action sequence.
func KeyFor(actions []string) ActionKey {
	return ActionKey(strings.Join(actions, "_"))
}

// Tokens splits the key back into its action tokens.
func (k ActionKey) Tokens() []string {
	return strings.Split(string(k), "_")
}

// ServiceKey groups a tally cell by action sequence and AWS service.
type ServiceKey struct {
	Actions ActionKey
	Service string
}

// ModuleKey groups a tally cell by module address and action sequence.
type ModuleKey struct {
	Module  string
	Actions ActionKey
}

// Summary holds the three independent tallies over one plan. Every change
// is counted exactly once in each tally, so each dimension sums to Total.
type Summary struct {
	Total     int
	ByAction  map[ActionKey]int
	ByService map[ServiceKey]int
	ByModule  map[ModuleKey]int
}

// Summarize classifies every resource change in the plan. A change entry
// with no actions makes the plan structurally invalid; an empty change
// list is a valid plan with Total zero.
func Summarize(plan *tfplan.Plan) (*Summary, error) {
	s := &Summary{
		ByAction:  make(map[ActionKey]int),
		ByService: make(map[ServiceKey]int),
		ByModule:  make(map[ModuleKey]int),
	}

	for i := range plan.ResourceChanges {
		rc := &plan.ResourceChanges[i]
		if len(rc.Change.Actions) == 0 {
			return nil, fmt.Errorf("resource change %q has no actions: %w", rc.Address, tfplan.ErrInvalidInput)
		}

		key := KeyFor(rc.Change.Actions)
		s.Total++
		s.ByAction[key]++
		s.ByService[ServiceKey{Actions: key, Service: ServiceName(rc.Type)}]++
		s.ByModule[ModuleKey{Module: rc.Module(), Actions: key}]++
	}

	return s, nil
}
