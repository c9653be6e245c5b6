package report

import (
	"fmt"
	"io"

	"github.com/maxgio92/perf-class/internal/utils"
	"github.com/maxgio92/perf-class/pkg/classify"
)

// WriteText writes one "label<sep>value" line per entry. The value is the
// percentage, or the raw cycle count when cycles is set.
func WriteText(w io.Writer, entries []Entry, sep string, cycles bool) error {
	for _, e := range entries {
		var err error
		if cycles {
			_, err = fmt.Fprintf(w, "%s%s%d\n", e.Label, sep, e.Cycles)
		} else {
			_, err = fmt.Fprintf(w, "%s%s%f\n", e.Label, sep, e.Percent)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// Summary is the closing diagnostic line of a run.
func Summary(totals classify.Totals, events int) string {
	return fmt.Sprintf("Finished, matched %f%% of cycles in %d events",
		utils.Percent(totals.Matched, totals.Total), events)
}
