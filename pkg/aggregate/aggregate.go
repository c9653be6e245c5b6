// Package aggregate merges perf events whose normalised stacks are equal.
package aggregate

import (
	"strings"

	"github.com/maxgio92/perf-class/internal/utils"
	"github.com/maxgio92/perf-class/pkg/perfscript"
)

const (
	fieldSep = 0x1f
	frameSep = 0x1e
)

var unresolvedSymbols = map[string]struct{}{
	"[unknown]": {},
	"??":        {},
}

// AggregatedEvent sums the cycles of every event sharing one normalised stack.
// Comm and Stack come from the first event seen.
type AggregatedEvent struct {
	Cycles uint64
	Comm   string
	Stack  []perfscript.Frame

	// Count is the number of raw events merged.
	Count int

	signature string
}

func (a *AggregatedEvent) Signature() string {
	return a.signature
}

// Aggregator is not safe for concurrent use.
type Aggregator struct {
	buckets map[uint64][]*AggregatedEvent
	events  []*AggregatedEvent
	total   uint64
}

func New() *Aggregator {
	return &Aggregator{
		buckets: make(map[uint64][]*AggregatedEvent),
	}
}

// Add folds evt into the aggregated event of its normalised stack.
func (a *Aggregator) Add(evt *perfscript.Event) {
	a.total += evt.Cycles

	stack := Normalize(evt.Stack)
	sig := Signature(stack, evt.Comm)
	h := utils.Hash(sig)

	for _, agg := range a.buckets[h] {
		if agg.signature == sig {
			agg.Cycles += evt.Cycles
			agg.Count++
			return
		}
	}

	agg := &AggregatedEvent{
		Cycles:    evt.Cycles,
		Comm:      evt.Comm,
		Stack:     stack,
		Count:     1,
		signature: sig,
	}
	a.buckets[h] = append(a.buckets[h], agg)
	a.events = append(a.events, agg)
}

// Events returns the aggregated events in first-seen order.
func (a *Aggregator) Events() []*AggregatedEvent {
	return a.events
}

// TotalCycles is the sum of the cycles of every event added.
func (a *Aggregator) TotalCycles() uint64 {
	return a.total
}

func (a *Aggregator) Len() int {
	return len(a.events)
}

// Aggregate merges events in one call.
func Aggregate(events []*perfscript.Event) ([]*AggregatedEvent, uint64) {
	a := New()
	for _, evt := range events {
		a.Add(evt)
	}

	return a.Events(), a.TotalCycles()
}

// Normalize drops unresolved frames and collapses runs of identical
// consecutive frames. The input is not modified.
func Normalize(stack []perfscript.Frame) []perfscript.Frame {
	out := make([]perfscript.Frame, 0, len(stack))
	for _, f := range stack {
		if _, ok := unresolvedSymbols[f.Symbol]; ok {
			continue
		}
		if n := len(out); n > 0 && out[n-1] == f {
			continue
		}
		out = append(out, f)
	}

	return out
}

// Signature is the merge key of a normalised stack and its process name.
func Signature(stack []perfscript.Frame, comm string) string {
	var b strings.Builder
	for _, f := range stack {
		b.WriteString(f.Address)
		b.WriteByte(fieldSep)
		b.WriteString(f.Symbol)
		b.WriteByte(fieldSep)
		b.WriteString(f.Location)
		b.WriteByte(frameSep)
	}
	b.WriteString(comm)

	return b.String()
}
