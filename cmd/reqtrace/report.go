package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/reqtrace/batch"
	"github.com/poiesic/reqtrace/core"
)

// reportLimit is the number of IDs listed per coverage gap.
const reportLimit = 10

// previewTextWidth truncates requirement text in the preview table.
const previewTextWidth = 48

func parseMethods(labels []string) ([]core.Method, error) {
	var methods []core.Method
	for _, label := range labels {
		for _, part := range strings.Split(label, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			m, ok := core.ParseMethod(part)
			if !ok {
				return nil, fmt.Errorf("unknown method %q: must be one of Fusion, Embedding, Lexical, NoMatch", part)
			}
			methods = append(methods, m)
		}
	}
	return methods, nil
}

// filterRows keeps rows whose method is in methods (all when empty) and
// whose fused score is at least minScore.
func filterRows(rows []core.TraceRow, methods []core.Method, minScore float64) []core.TraceRow {
	var out []core.TraceRow
	for _, row := range rows {
		if len(methods) > 0 && !containsMethod(methods, row.Score.Method) {
			continue
		}
		if row.Score.FusedScore < minScore {
			continue
		}
		out = append(out, row)
	}
	return out
}

func containsMethod(methods []core.Method, m core.Method) bool {
	for _, candidate := range methods {
		if candidate == m {
			return true
		}
	}
	return false
}

func printPreview(w io.Writer, rows []core.TraceRow, total, limit int) {
	if limit == 0 {
		return
	}
	shown := rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	fmt.Fprintf(w, "Showing %d of %d rows (%d after filters)\n\n", len(shown), total, len(rows))
	if len(shown) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHILD\tPARENT\tSCORE\tRULE\tEMB\tTFIDF\tMETHOD\tGROUPS\tPARENT TEXT")
	for _, row := range shown {
		rule := "-"
		if row.Score.RuleScore != nil {
			rule = fmt.Sprintf("%.2f", *row.Score.RuleScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\t%.3f\t%.3f\t%s\t%s\t%s\n",
			row.ChildID,
			row.ParentID,
			row.Score.FusedScore,
			rule,
			row.Score.EmbeddingScore,
			row.Score.TFIDFScore,
			row.Score.Method,
			strings.Join(row.MatchedGroups, ", "),
			truncate(row.ParentText, previewTextWidth))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func printReport(w io.Writer, report core.ValidationReport, threshold float64) {
	t := report.Totals
	fmt.Fprintf(w, "Children: %d  Parents: %d  Traces: %d\n", t.Children, t.Parents, t.Traces)
	if !report.HasWarnings() {
		fmt.Fprintln(w, "Coverage OK: every child and parent is traced")
		return
	}
	printIDs(w, fmt.Sprintf("Orphan children (best score below %.2f)", threshold), report.OrphanChildren)
	printIDs(w, "Parents without children", report.ChildlessParents)
}

func printIDs(w io.Writer, title string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(w, "%s: %d\n", title, len(ids))
	for i, id := range ids {
		if i == reportLimit {
			fmt.Fprintf(w, "  ... and %d more\n", len(ids)-reportLimit)
			break
		}
		fmt.Fprintf(w, "  %s\n", id)
	}
}

func printBatchSummary(w io.Writer, results []batch.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORKBOOK\tSTATUS\tROWS\tORPHANS\tCHILDLESS\tATTEMPTS\tOUTPUT")
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(tw, "%s\tfailed\t-\t-\t-\t%d\t%v\n", res.Job.Name, res.Attempts, res.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\tok\t%d\t%d\t%d\t%d\t%s\n",
			res.Job.Name,
			len(res.Matrix.Rows),
			len(res.Report.OrphanChildren),
			len(res.Report.ChildlessParents),
			res.Attempts,
			res.Job.Output)
	}
	tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
