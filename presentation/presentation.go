// Package presentation renders query results in tabular and JSON form,
// for the repl and cmd/rulekit packages.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/rulekit/rulekit/term"
)

// PrintJSON prints an indented JSON rendering of v.
func PrintJSON(w io.Writer, v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(buf))
	return err
}

// PrintBindings renders one query's accumulated Result events as a
// table, one row per result, columns sorted by variable name. An empty
// results slice prints nothing (mirroring the teacher's "only render a
// table when there's something to show" convention).
func PrintBindings(w io.Writer, vars []term.Symbol, results []map[term.Symbol]*term.Term) {
	if len(results) == 0 {
		return
	}
	sorted := append([]term.Symbol(nil), vars...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	header := make([]string, len(sorted))
	for i, v := range sorted {
		header[i] = string(v)
	}
	table.SetHeader(header)

	for _, r := range results {
		row := make([]string, len(sorted))
		for i, v := range sorted {
			if t, ok := r[v]; ok {
				row[i] = t.String()
			} else {
				row[i] = "_"
			}
		}
		table.Append(row)
	}
	table.Render()
}
