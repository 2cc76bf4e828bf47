package workbook

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/reqtrace/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleMatrix() *core.TraceMatrix {
	return &core.TraceMatrix{
		ChildColumns:  []string{"Owner"},
		ParentColumns: []string{"Area"},
		Rows: []core.TraceRow{
			{
				ChildID:    "C1",
				ChildText:  "ECG monitor shall display heart rate",
				ParentID:   "P1",
				ParentText: "Electrocardiogram heart signal",
				Score: core.PairScore{
					RuleScore:      core.Float(0.85),
					EmbeddingScore: 0.9,
					TFIDFScore:     0.123456789,
					FusedScore:     0.9,
					Method:         core.MethodFusion,
				},
				MatchedGroups: []string{"ECG", "HEART"},
				ChildExtra:    []string{"alice"},
				ParentExtra:   []string{"cardio"},
			},
			{
				ChildID:    "C1",
				ChildText:  "ECG monitor shall display heart rate",
				ParentID:   "P2",
				ParentText: "Battery status",
				Score: core.PairScore{
					EmbeddingScore: 0.1,
					TFIDFScore:     0.3,
					FusedScore:     0.3,
					Method:         core.MethodLexical,
				},
				MatchedGroups: []string{},
				ChildExtra:    []string{"alice"},
				ParentExtra:   []string{"power"},
			},
			{
				ChildID: "C2",
				Score: core.PairScore{
					RuleScore: core.Float(0),
					Method:    core.MethodNoMatch,
				},
				MatchedGroups: []string{},
				ChildExtra:    []string{"bob"},
				ParentExtra:   []string{""},
			},
		},
	}
}

func assertMatrixEqual(t *testing.T, want, got *core.TraceMatrix) {
	t.Helper()
	assert.Equal(t, want.ChildColumns, got.ChildColumns)
	assert.Equal(t, want.ParentColumns, got.ParentColumns)
	require.Len(t, got.Rows, len(want.Rows))

	for i := range want.Rows {
		w, g := want.Rows[i], got.Rows[i]
		assert.Equal(t, w.ChildID, g.ChildID, "row %d", i)
		assert.Equal(t, w.ChildText, g.ChildText, "row %d", i)
		assert.Equal(t, w.ParentID, g.ParentID, "row %d", i)
		assert.Equal(t, w.ParentText, g.ParentText, "row %d", i)
		if w.Score.RuleScore == nil {
			assert.Nil(t, g.Score.RuleScore, "row %d", i)
		} else {
			require.NotNil(t, g.Score.RuleScore, "row %d", i)
			assert.InDelta(t, *w.Score.RuleScore, *g.Score.RuleScore, 1e-6, "row %d", i)
		}
		assert.InDelta(t, w.Score.EmbeddingScore, g.Score.EmbeddingScore, 1e-6, "row %d", i)
		assert.InDelta(t, w.Score.TFIDFScore, g.Score.TFIDFScore, 1e-6, "row %d", i)
		assert.InDelta(t, w.Score.FusedScore, g.Score.FusedScore, 1e-6, "row %d", i)
		assert.Equal(t, w.Score.Method, g.Score.Method, "row %d", i)
		assert.Equal(t, w.MatchedGroups, g.MatchedGroups, "row %d", i)
		assert.Equal(t, w.ChildExtra, g.ChildExtra, "row %d", i)
		assert.Equal(t, w.ParentExtra, g.ParentExtra, "row %d", i)
	}
}

func TestHeader(t *testing.T) {
	header := Header(sampleMatrix())
	assert.Equal(t, []string{
		"Child_ID", "Child_Text", "Parent_ID", "Parent_Text",
		"Score_Rule", "Score_Embedding", "Score_TFIDF", "Computed_Score",
		"Method_Used", "Matched_Groups",
		"Child_Owner", "Parent_Area",
	}, header)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleMatrix()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "C1,ECG monitor shall display heart rate,P1,"))
	assert.Contains(t, lines[1], `0.85,0.9,0.123456789,0.9,Fusion,"ECG, HEART",alice,cardio`)
	// No rule evidence leaves the cell empty.
	assert.Contains(t, lines[2], "Battery status,,0.1,0.3,0.3,Lexical,,alice,power")
	assert.Equal(t, "C2,,,,0,0,0,0,NoMatch,,bob,", lines[3])
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"trace.csv", "trace.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := sampleMatrix()

			require.NoError(t, WriteFile(path, "", want))
			got, err := ReadTraceMatrix(path, "")
			require.NoError(t, err)
			assertMatrixEqual(t, want, got)
		})
	}
}

func TestWriteXLSX_ReplacesSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Notes": {{"keep me"}},
	})

	// Write twice; the second write must replace the first.
	first := sampleMatrix()
	require.NoError(t, WriteXLSX(path, "", first))
	second := sampleMatrix()
	second.Rows = second.Rows[:1]
	require.NoError(t, WriteXLSX(path, "", second))

	names, err := SheetNames(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Notes", DefaultSheetName}, names)

	got, err := ReadTraceMatrix(path, DefaultSheetName)
	require.NoError(t, err)
	assertMatrixEqual(t, second, got)

	notes, err := ReadTable(path, "Notes")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep me"}, notes.Header)
}

func TestWriteXLSXTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSXTo(&buf, "Scores", sampleMatrix()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Scores"}, f.GetSheetList())

	rows, err := f.GetRows("Scores")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestParseTraceMatrix_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		table *Table
	}{
		{
			name:  "too few columns",
			table: &Table{Header: []string{"Child_ID", "Child_Text"}},
		},
		{
			name: "wrong column",
			table: &Table{Header: []string{
				"Child_ID", "Child_Text", "Parent_ID", "Parent_Text",
				"Score_Rule", "Score_Embedding", "Score_TFIDF", "Score",
				"Method_Used", "Matched_Groups",
			}},
		},
		{
			name: "unknown method",
			table: &Table{
				Header: Header(&core.TraceMatrix{}),
				Rows:   [][]string{{"C1", "t", "P1", "t", "", "0.1", "0.2", "0.2", "Guess", ""}},
			},
		},
		{
			name: "bad score",
			table: &Table{
				Header: Header(&core.TraceMatrix{}),
				Rows:   [][]string{{"C1", "t", "P1", "t", "", "high", "0.2", "0.2", "Lexical", ""}},
			},
		},
		{
			name: "unprefixed extra",
			table: &Table{
				Header: append(Header(&core.TraceMatrix{}), "Owner"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTraceMatrix(tt.table)
			assert.ErrorIs(t, err, ErrMalformedMatrix)
		})
	}
}
