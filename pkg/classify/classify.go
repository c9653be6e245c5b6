// Package classify assigns aggregated events to classes using ordered
// frame and process rules.
package classify

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/maxgio92/perf-class/internal/settings"
	"github.com/maxgio92/perf-class/pkg/aggregate"
	"github.com/maxgio92/perf-class/pkg/perfscript"
	"github.com/maxgio92/perf-class/pkg/rules"
)

// Searcher is the part of a rule set the classifier queries.
type Searcher interface {
	SearchFrame(symbol string) (string, bool)
	SearchProcess(comm string) (string, bool)
}

var _ Searcher = (*rules.RuleSet)(nil)

type MatchKind int

const (
	Unmatched MatchKind = iota
	FrameMatch
	ProcessMatch
)

func (k MatchKind) String() string {
	switch k {
	case FrameMatch:
		return "frame"
	case ProcessMatch:
		return "process"
	default:
		return "unknown"
	}
}

// Assignment is the outcome of classifying one aggregated event.
type Assignment struct {
	Event *aggregate.AggregatedEvent
	Label string
	Kind  MatchKind

	// Subject is the text the label was derived from: the matched
	// (possibly kernel-marked) symbol, the process name, or the fallback
	// symbol of an unmatched event.
	Subject string
}

func (a Assignment) Matched() bool {
	return a.Kind != Unmatched
}

// UnknownDiagnostic is reported once per distinct fallback symbol.
type UnknownDiagnostic struct {
	Symbol string
	Comm   string
	Cycles uint64
	Stack  []perfscript.Frame
}

type Result struct {
	Tally       *Tally
	Totals      Totals
	Unknowns    []UnknownDiagnostic
	Assignments []Assignment
}

type Classifier struct {
	rules Searcher

	*ClassifierOptions
}

func New(rs Searcher, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		rules:             rs,
		ClassifierOptions: defaultOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Classify visits events from the largest cycle count to the smallest and
// tallies each one under its class. It keeps no state between calls.
func (c *Classifier) Classify(events []*aggregate.AggregatedEvent) *Result {
	ordered := make([]*aggregate.AggregatedEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Cycles > ordered[j].Cycles
	})

	res := &Result{
		Tally:       NewTally(),
		Assignments: make([]Assignment, 0, len(ordered)),
	}
	warned := mapset.NewThreadUnsafeSet[string]()

	for _, evt := range ordered {
		res.Totals.Total += evt.Cycles

		a := c.assign(evt)
		res.Assignments = append(res.Assignments, a)

		if a.Matched() {
			res.Tally.Add(a.Label, evt.Cycles)
			res.Totals.Matched += evt.Cycles
			c.logger.Debug().
				Str("subject", a.Subject).
				Str("class", a.Label).
				Str("by", a.Kind.String()).
				Uint64("cycles", evt.Cycles).
				Msg("event matched")
			continue
		}

		if warned.Add(a.Label) {
			res.Unknowns = append(res.Unknowns, UnknownDiagnostic{
				Symbol: a.Label,
				Comm:   evt.Comm,
				Cycles: evt.Cycles,
				Stack:  evt.Stack,
			})
		}
		if c.tallyUnknown {
			res.Tally.Add(a.Label, evt.Cycles)
		}
	}

	return res
}

func (c *Classifier) assign(evt *aggregate.AggregatedEvent) Assignment {
	for i, f := range evt.Stack {
		if i >= c.maxDepth {
			break
		}
		sym := f.Symbol
		if f.IsKernel() {
			sym = settings.KernelMarker + sym
		}
		if label, ok := c.rules.SearchFrame(sym); ok {
			return Assignment{Event: evt, Label: label, Kind: FrameMatch, Subject: sym}
		}
	}

	if label, ok := c.rules.SearchProcess(evt.Comm); ok {
		return Assignment{Event: evt, Label: label, Kind: ProcessMatch, Subject: evt.Comm}
	}

	fallback := FallbackSymbol(evt)
	return Assignment{Event: evt, Label: fallback, Kind: Unmatched, Subject: fallback}
}

// FallbackSymbol names an unmatched event: the process name for an empty
// stack, else the innermost frame symbol, else its address.
func FallbackSymbol(evt *aggregate.AggregatedEvent) string {
	if len(evt.Stack) == 0 {
		return evt.Comm
	}
	inner := evt.Stack[0]
	if inner.Symbol != "" {
		return inner.Symbol
	}
	if inner.Address != "" {
		return inner.Address
	}

	return evt.Comm
}
