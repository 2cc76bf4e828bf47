package coverage

import (
	"testing"

	"github.com/poiesic/reqtrace/core"
	"github.com/stretchr/testify/assert"
)

func records(ids ...string) []core.RequirementRecord {
	out := make([]core.RequirementRecord, len(ids))
	for i, id := range ids {
		out[i] = core.RequirementRecord{ID: id, Text: "text " + id}
	}
	return out
}

func row(child, parent string, score float64) core.TraceRow {
	return core.TraceRow{
		ChildID:  child,
		ParentID: parent,
		Score:    core.PairScore{FusedScore: score, Method: core.MethodEmbedding},
	}
}

func TestValidate_Threshold(t *testing.T) {
	children := records("C1", "C2", "C3")
	parents := records("P1", "P2", "P3", "P4")
	matrix := &core.TraceMatrix{Rows: []core.TraceRow{
		row("C1", "P1", 0.92),
		row("C1", "P2", 0.40),
		row("C2", "P2", 0.49),
		row("C2", "P1", 0.30),
		row("C3", "P1", 0.50),
	}}

	report := Validate(matrix, children, parents, 0.5)

	assert.ElementsMatch(t, []string{"C2"}, report.OrphanChildren)
	assert.ElementsMatch(t, []string{"P4", "P3"}, report.ChildlessParents)
	assert.Equal(t, core.Totals{Children: 3, Parents: 4, Traces: 5}, report.Totals)
	assert.True(t, report.HasWarnings())
}

func TestValidate_ChildWithoutRows(t *testing.T) {
	report := Validate(&core.TraceMatrix{Rows: []core.TraceRow{row("C1", "P1", 0.9)}},
		records("C1", "C2"), records("P1"), DefaultThreshold)

	assert.ElementsMatch(t, []string{"C2"}, report.OrphanChildren)
	assert.Empty(t, report.ChildlessParents)
}

func TestValidate_PlaceholderRows(t *testing.T) {
	placeholder := core.TraceRow{ChildID: "C2", Score: core.PairScore{RuleScore: core.Float(0), Method: core.MethodNoMatch}}
	matrix := &core.TraceMatrix{Rows: []core.TraceRow{row("C1", "P1", 0.8), placeholder}}

	report := Validate(matrix, records("C1", "C2"), records("P1", "P2"), DefaultThreshold)

	assert.ElementsMatch(t, []string{"C2"}, report.OrphanChildren)
	assert.ElementsMatch(t, []string{"P2"}, report.ChildlessParents)
	assert.Equal(t, 2, report.Totals.Traces)
}

func TestValidate_DuplicateIDsReportedOnce(t *testing.T) {
	report := Validate(&core.TraceMatrix{}, records("C1", "C1"), records("P1", "P1"), DefaultThreshold)

	assert.Equal(t, []string{"C1"}, report.OrphanChildren)
	assert.Equal(t, []string{"P1"}, report.ChildlessParents)
	assert.Equal(t, 2, report.Totals.Children)
}

func TestValidate_FullCoverage(t *testing.T) {
	matrix := &core.TraceMatrix{Rows: []core.TraceRow{row("C1", "P1", 0.7), row("C2", "P2", 0.6)}}
	report := Validate(matrix, records("C1", "C2"), records("P1", "P2"), DefaultThreshold)

	assert.Empty(t, report.OrphanChildren)
	assert.Empty(t, report.ChildlessParents)
	assert.False(t, report.HasWarnings())
}

func TestValidate_NilMatrix(t *testing.T) {
	report := Validate(nil, records("C1"), records("P1"), DefaultThreshold)
	assert.Equal(t, []string{"C1"}, report.OrphanChildren)
	assert.Equal(t, []string{"P1"}, report.ChildlessParents)
	assert.Equal(t, 0, report.Totals.Traces)
}
