// Package report turns class tallies into sorted, thresholded report
// entries and writes them out in several formats.
package report

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/maxgio92/perf-class/internal/utils"
	"github.com/maxgio92/perf-class/pkg/classify"
)

var ErrUnknownDenominator = errors.New("unknown denominator")

// Denominator selects the cycle count percentages are computed against.
type Denominator int

const (
	// TotalCycles counts unknown events against the grand total.
	TotalCycles Denominator = iota
	// MatchedCycles only counts events that matched a rule.
	MatchedCycles
)

func (d Denominator) String() string {
	if d == MatchedCycles {
		return "matched"
	}
	return "total"
}

func ParseDenominator(s string) (Denominator, error) {
	switch s {
	case "total":
		return TotalCycles, nil
	case "matched":
		return MatchedCycles, nil
	}
	return TotalCycles, errors.Wrap(ErrUnknownDenominator, s)
}

// Base returns the cycle count d selects from totals.
func (d Denominator) Base(totals classify.Totals) uint64 {
	if d == MatchedCycles {
		return totals.Matched
	}
	return totals.Total
}

type Entry struct {
	Label   string  `json:"class"`
	Cycles  uint64  `json:"cycles"`
	Percent float64 `json:"percent"`
}

type Option func(o *options)

type options struct {
	denominator Denominator
	minPercent  float64
}

func WithDenominator(d Denominator) Option {
	return func(o *options) {
		o.denominator = d
	}
}

// WithMinPercent drops entries whose percentage is not strictly above pc.
func WithMinPercent(pc float64) Option {
	return func(o *options) {
		o.minPercent = pc
	}
}

// Build returns the tallied classes sorted by cycles, descending, with ties
// kept in tally order. With a zero denominator no entry is returned.
func Build(tally *classify.Tally, totals classify.Totals, opts ...Option) []Entry {
	o := new(options)
	for _, f := range opts {
		f(o)
	}

	base := o.denominator.Base(totals)
	if base == 0 {
		return nil
	}

	entries := make([]Entry, 0, tally.Len())
	for _, label := range tally.Labels() {
		c, _ := tally.Get(label)
		entries = append(entries, Entry{Label: label, Cycles: c})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Cycles > entries[j].Cycles
	})

	out := entries[:0]
	for _, e := range entries {
		e.Percent = utils.Percent(e.Cycles, base)
		if e.Percent <= o.minPercent {
			continue
		}
		e.Label = utils.StripPadding(e.Label)
		out = append(out, e)
	}

	return out
}
