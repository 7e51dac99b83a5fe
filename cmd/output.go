package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ginjaninja78/broai/internal/types"
)

// commandContext bounds one command's backend calls by the configured
// request timeout.
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, cfg.RequestTimeout)
}

// printMapping prints the header -> key mapping in header order.
func printMapping(w io.Writer, headers []string, mapping types.ColumnMapping) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tMAPS TO")
	for _, h := range headers {
		target := mapping[h]
		if target == "" {
			target = "(unmapped)"
		}
		fmt.Fprintf(tw, "%s\t%s\n", h, target)
	}
	tw.Flush()
}

// printPreview prints up to limit preview rows with the given columns.
// Issues reported by the import service are shown in the last column.
func printPreview(w io.Writer, columns []string, rows []types.PreviewRow, limit int) {
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\t%s\tISSUES\n", strings.Join(columns, "\t"))
	for _, r := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = r.Data.Get(c).String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.RowNumber, strings.Join(cells, "\t"), strings.Join(r.Issues, "; "))
	}
	tw.Flush()
}
