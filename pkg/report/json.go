package report

import (
	"encoding/json"
	"io"

	"github.com/maxgio92/perf-class/internal/utils"
	"github.com/maxgio92/perf-class/pkg/classify"
)

type JSONReport struct {
	Classes        []Entry `json:"classes"`
	TotalCycles    uint64  `json:"total_cycles"`
	MatchedCycles  uint64  `json:"matched_cycles"`
	MatchedPercent float64 `json:"matched_percent"`
	Events         int     `json:"events"`
	Denominator    string  `json:"denominator"`
}

type JSONReportOption func(*JSONReport)

func NewJSONReport(opts ...JSONReportOption) *JSONReport {
	report := &JSONReport{Classes: []Entry{}}
	for _, opt := range opts {
		opt(report)
	}

	return report
}

func WithReportEntries(entries []Entry) JSONReportOption {
	return func(o *JSONReport) {
		if entries != nil {
			o.Classes = entries
		}
	}
}

func WithReportTotals(totals classify.Totals) JSONReportOption {
	return func(o *JSONReport) {
		o.TotalCycles = totals.Total
		o.MatchedCycles = totals.Matched
		o.MatchedPercent = utils.Percent(totals.Matched, totals.Total)
	}
}

func WithReportEvents(events int) JSONReportOption {
	return func(o *JSONReport) {
		o.Events = events
	}
}

func WithReportDenominator(d Denominator) JSONReportOption {
	return func(o *JSONReport) {
		o.Denominator = d.String()
	}
}

func (r *JSONReport) WriteReport(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
