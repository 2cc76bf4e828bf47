// Package coverage reports gaps in a ranked trace matrix.
package coverage

import "github.com/poiesic/reqtrace/core"

// DefaultThreshold is the minimum best score for a child to count as traced.
const DefaultThreshold = 0.5

// Validate lists children whose best fused score is below threshold (or who
// have no rows) and parents that no child selected. Placeholder rows count
// toward a child's rows but never map a parent. IDs are reported once each,
// in table order.
func Validate(matrix *core.TraceMatrix, children, parents []core.RequirementRecord, threshold float64) core.ValidationReport {
	best := make(map[string]float64)
	mapped := make(map[string]struct{})

	var rows []core.TraceRow
	if matrix != nil {
		rows = matrix.Rows
	}
	for i := range rows {
		row := &rows[i]
		if score, ok := best[row.ChildID]; !ok || row.Score.FusedScore > score {
			best[row.ChildID] = row.Score.FusedScore
		}
		if !row.IsPlaceholder() && row.ParentID != "" {
			mapped[row.ParentID] = struct{}{}
		}
	}

	report := core.ValidationReport{
		OrphanChildren:   []string{},
		ChildlessParents: []string{},
		Totals: core.Totals{
			Children: len(children),
			Parents:  len(parents),
			Traces:   len(rows),
		},
	}

	seen := make(map[string]struct{})
	for i := range children {
		id := children[i].ID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if score, ok := best[id]; !ok || score < threshold {
			report.OrphanChildren = append(report.OrphanChildren, id)
		}
	}

	clear(seen)
	for i := range parents {
		id := parents[i].ID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := mapped[id]; !ok {
			report.ChildlessParents = append(report.ChildlessParents, id)
		}
	}
	return report
}
