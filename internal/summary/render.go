package summary

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tfdeploy-io/tfdeploy/internal/tfplan"
)

// Format selects the rendering mode for a summary report.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatText, FormatMarkdown, FormatJSON:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, markdown, or json)", name)
	}
}

// actionLabels covers the action combinations Terraform is known to emit.
// Anything else renders through the fallback in label().
var actionLabels = map[ActionKey]string{
	"create":        "🟢 create",
	"update":        "🟡 update",
	"delete":        "🔴 delete",
	"create_delete": "🔄 replace",
	"delete_create": "🔄 replace",
	"no-op":         "⚪ no-op",
	"read":          "📖 read",
}

// label returns the glyph-prefixed human label for an action key.
func label(k ActionKey) string {
	if l, ok := actionLabels[k]; ok {
		return l
	}
	return "❓ " + strings.Join(k.Tokens(), ", ")
}

// plainLabel strips the leading glyph, keeping only the label text.
// Used in Markdown table cells.
func plainLabel(k ActionKey) string {
	l := label(k)
	if _, rest, ok := strings.Cut(l, " "); ok {
		return rest
	}
	return l
}

// Render produces the full report for a summary in the requested format.
// Detailed adds the per-service and per-module sections to text and
// Markdown output; JSON output always carries the full structure.
func Render(s *Summary, detailed bool, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(s)
	case FormatMarkdown:
		return renderMarkdown(s, detailed), nil
	case FormatText:
		return renderText(s, detailed), nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

// Report aggregates a plan and renders it in one step.
func Report(plan *tfplan.Plan, detailed bool, format Format) (string, error) {
	s, err := Summarize(plan)
	if err != nil {
		return "", err
	}
	return Render(s, detailed, format)
}

// actionRow is one tally line within a section.
type actionRow struct {
	key   ActionKey
	count int
}

// group is a named sub-section (one service or one module) with its own
// ordered action rows.
type group struct {
	name  string
	total int
	rows  []actionRow
}

// overallRows orders the whole-plan tally by descending count, breaking
// ties on the canonical key so output is byte-stable.
func overallRows(s *Summary) []actionRow {
	rows := make([]actionRow, 0, len(s.ByAction))
	for k, n := range s.ByAction {
		rows = append(rows, actionRow{key: k, count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	return rows
}

// serviceGroups orders services lexically, each with rows in key order.
func serviceGroups(s *Summary) []group {
	byName := make(map[string]*group)
	for k, n := range s.ByService {
		g, ok := byName[k.Service]
		if !ok {
			g = &group{name: k.Service}
			byName[k.Service] = g
		}
		g.total += n
		g.rows = append(g.rows, actionRow{key: k.Actions, count: n})
	}
	return sortGroups(byName)
}

// moduleGroups orders module addresses lexically, each with rows in key order.
func moduleGroups(s *Summary) []group {
	byName := make(map[string]*group)
	for k, n := range s.ByModule {
		g, ok := byName[k.Module]
		if !ok {
			g = &group{name: k.Module}
			byName[k.Module] = g
		}
		g.total += n
		g.rows = append(g.rows, actionRow{key: k.Actions, count: n})
	}
	return sortGroups(byName)
}

func sortGroups(byName map[string]*group) []group {
	groups := make([]group, 0, len(byName))
	for _, g := range byName {
		sort.Slice(g.rows, func(i, j int) bool { return g.rows[i].key < g.rows[j].key })
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].name < groups[j].name })
	return groups
}

func renderText(s *Summary, detailed bool) string {
	var b strings.Builder
	banner := strings.Repeat("=", 60)

	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, "TERRAFORM PLAN SUMMARY")
	fmt.Fprintln(&b, banner)
	fmt.Fprintf(&b, "Total changes: %d resources\n", s.Total)
	fmt.Fprintln(&b)

	if s.Total == 0 {
		fmt.Fprintln(&b, "✅ No changes detected!")
		return b.String()
	}

	fmt.Fprintln(&b, "📋 OVERALL CHANGES:")
	for _, row := range overallRows(s) {
		fmt.Fprintf(&b, "  %s: %d resources\n", label(row.key), row.count)
	}
	fmt.Fprintln(&b)

	if detailed {
		fmt.Fprintln(&b, "🔧 BY SERVICE:")
		for _, g := range serviceGroups(s) {
			fmt.Fprintf(&b, "  %s: %d total\n", strings.ToUpper(g.name), g.total)
			for _, row := range g.rows {
				fmt.Fprintf(&b, "    └─ %s: %d\n", label(row.key), row.count)
			}
		}
		fmt.Fprintln(&b)

		fmt.Fprintln(&b, "📦 BY MODULE:")
		for _, g := range moduleGroups(s) {
			fmt.Fprintf(&b, "  %s: %d total\n", g.name, g.total)
			for _, row := range g.rows {
				fmt.Fprintf(&b, "    └─ %s: %d\n", label(row.key), row.count)
			}
		}
		fmt.Fprintln(&b)
	}

	return b.String()
}

func renderMarkdown(s *Summary, detailed bool) string {
	var b strings.Builder

	fmt.Fprintln(&b, "# Terraform Plan Summary")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "**Total changes:** %d resources\n", s.Total)
	fmt.Fprintln(&b)

	if s.Total == 0 {
		fmt.Fprintln(&b, "✅ **No changes detected!**")
		return b.String()
	}

	fmt.Fprintln(&b, "## 📋 Overall Changes")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Action | Count |")
	fmt.Fprintln(&b, "|--------|-------|")
	for _, row := range overallRows(s) {
		fmt.Fprintf(&b, "| %s | %d |\n", plainLabel(row.key), row.count)
	}
	fmt.Fprintln(&b)

	if detailed {
		fmt.Fprintln(&b, "## 🔧 By Service")
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "| Service | Total | Details |")
		fmt.Fprintln(&b, "|---------|-------|---------|")
		for _, g := range serviceGroups(s) {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", strings.ToUpper(g.name), g.total, detailCell(g.rows))
		}
		fmt.Fprintln(&b)

		fmt.Fprintln(&b, "## 📦 By Module")
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "| Module | Total | Details |")
		fmt.Fprintln(&b, "|--------|-------|---------|")
		for _, g := range moduleGroups(s) {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", g.name, g.total, detailCell(g.rows))
		}
		fmt.Fprintln(&b)
	}

	return b.String()
}

// detailCell joins a group's action rows into one table cell.
func detailCell(rows []actionRow) string {
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, fmt.Sprintf("%s: %d", plainLabel(row.key), row.count))
	}
	return strings.Join(parts, ", ")
}

type jsonGroup struct {
	Total   int            `json:"total"`
	Details map[string]int `json:"details"`
}

type jsonReport struct {
	TotalChanges int                  `json:"total_changes"`
	Summary      map[string]int       `json:"summary"`
	ByService    map[string]jsonGroup `json:"by_service"`
	ByModule     map[string]jsonGroup `json:"by_module"`
}

func renderJSON(s *Summary) (string, error) {
	report := jsonReport{
		TotalChanges: s.Total,
		Summary:      make(map[string]int, len(s.ByAction)),
		ByService:    make(map[string]jsonGroup),
		ByModule:     make(map[string]jsonGroup),
	}

	for k, n := range s.ByAction {
		report.Summary[string(k)] = n
	}
	for _, g := range serviceGroups(s) {
		report.ByService[g.name] = jsonGroupFor(g)
	}
	for _, g := range moduleGroups(s) {
		report.ByModule[g.name] = jsonGroupFor(g)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	return string(data) + "\n", nil
}

func jsonGroupFor(g group) jsonGroup {
	details := make(map[string]int, len(g.rows))
	for _, row := range g.rows {
		details[string(row.key)] = row.count
	}
	return jsonGroup{Total: g.total, Details: details}
}
