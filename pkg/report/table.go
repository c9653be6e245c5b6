package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/maxgio92/perf-class/internal/output"
)

const (
	minBarWidth   = 10
	tableOverhead = 30
)

// WriteTable writes entries as an aligned table with a percentage bar,
// sized to fit width columns.
func WriteTable(w io.Writer, entries []Entry, width int) error {
	labelWidth := len("CLASS")
	for _, e := range entries {
		if len(e.Label) > labelWidth {
			labelWidth = len(e.Label)
		}
	}
	barWidth := width - labelWidth - tableOverhead
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	if _, err := fmt.Fprintf(w, "%-*s  %-*s  %8s  %s\n",
		labelWidth, "CLASS", barWidth, "", "PERCENT", "CYCLES"); err != nil {
		return err
	}
	for _, e := range entries {
		_, err := fmt.Fprintf(w, "%-*s  %s  %7.2f%%  %s\n",
			labelWidth, e.Label,
			output.ProgressBar(e.Percent, barWidth),
			e.Percent,
			humanize.Comma(int64(e.Cycles)),
		)
		if err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no class above threshold")
		return err
	}

	return nil
}
