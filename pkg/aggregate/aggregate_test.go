package aggregate_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maxgio92/perf-class/pkg/aggregate"
	"github.com/maxgio92/perf-class/pkg/perfscript"
)

func frame(sym string) perfscript.Frame {
	return perfscript.Frame{Symbol: sym, Location: "/bin/app"}
}

func event(comm string, cycles uint64, syms ...string) *perfscript.Event {
	evt := &perfscript.Event{Comm: comm, Cycles: cycles}
	for _, s := range syms {
		evt.Stack = append(evt.Stack, frame(s))
	}

	return evt
}

func TestAggregateMergesIdenticalStacks(t *testing.T) {
	events, total := aggregate.Aggregate([]*perfscript.Event{
		event("app", 30, "parse", "main"),
		event("app", 70, "parse", "main"),
	})
	require.Len(t, events, 1)
	require.Equal(t, uint64(100), events[0].Cycles)
	require.Equal(t, 2, events[0].Count)
	require.Equal(t, uint64(100), total)
}

func TestAggregateIdempotentMerge(t *testing.T) {
	for _, n := range []int{1, 10, 1000} {
		t.Run(fmt.Sprintf("%d duplicates", n), func(t *testing.T) {
			a := aggregate.New()
			for i := 0; i < n; i++ {
				a.Add(event("app", 3, "hot", "main"))
				a.Add(event("app", 1, "cold", "main"))
			}
			require.Equal(t, 2, a.Len(), "distinct shapes must not depend on duplicate count")
			require.Equal(t, uint64(3*n), a.Events()[0].Cycles)
			require.Equal(t, uint64(n), a.Events()[1].Cycles)
			require.Equal(t, uint64(4*n), a.TotalCycles())
		})
	}
}

func TestAggregateConservesCycles(t *testing.T) {
	raw := []*perfscript.Event{
		event("a", 5, "x"),
		event("a", 7, "x", "[unknown]"),
		event("b", 11, "x"),
		event("a", 13),
		event("a", 17, "??"),
		event("c", 0, "y"),
	}
	var want uint64
	for _, e := range raw {
		want += e.Cycles
	}

	events, total := aggregate.Aggregate(raw)
	require.Equal(t, want, total)

	var sum uint64
	for _, e := range events {
		sum += e.Cycles
	}
	require.Equal(t, want, sum)
}

func TestAggregateKeepsFirstOccurrence(t *testing.T) {
	first := event("app", 1, "f")
	first.Stack[0].Location = "/bin/app"
	second := event("app", 2, "f", "[unknown]", "f")

	events, _ := aggregate.Aggregate([]*perfscript.Event{first, second})
	require.Len(t, events, 1)
	require.Equal(t, uint64(3), events[0].Cycles)
	require.Equal(t, []perfscript.Frame{frame("f")}, events[0].Stack)
}

func TestAggregateDisambiguatesByComm(t *testing.T) {
	events, _ := aggregate.Aggregate([]*perfscript.Event{
		event("nginx", 1, "epoll_wait"),
		event("redis", 1, "epoll_wait"),
		event("nginx", 1),
		event("redis", 1),
	})
	require.Len(t, events, 4)
}

func TestAggregateAddressesAreSignificant(t *testing.T) {
	a := &perfscript.Event{Comm: "app", Cycles: 1, Stack: []perfscript.Frame{{Address: "10", Symbol: "f"}}}
	b := &perfscript.Event{Comm: "app", Cycles: 1, Stack: []perfscript.Frame{{Address: "20", Symbol: "f"}}}

	events, _ := aggregate.Aggregate([]*perfscript.Event{a, b})
	require.Len(t, events, 2)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"drops unresolved", []string{"[unknown]", "a", "??", "b"}, []string{"a", "b"}},
		{"collapses runs", []string{"a", "a", "a", "b", "b", "a"}, []string{"a", "b", "a"}},
		{"collapses across dropped frames", []string{"a", "[unknown]", "a"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in []perfscript.Frame
			for _, s := range tt.in {
				in = append(in, frame(s))
			}
			got := aggregate.Normalize(in)

			syms := make([]string, 0, len(got))
			for _, f := range got {
				syms = append(syms, f.Symbol)
			}
			require.Equal(t, tt.want, syms)
		})
	}
}

func TestSignatureNoFieldCollisions(t *testing.T) {
	a := aggregate.Signature([]perfscript.Frame{{Symbol: "a b", Location: "c"}}, "p")
	b := aggregate.Signature([]perfscript.Frame{{Symbol: "a", Location: "b c"}}, "p")
	require.NotEqual(t, a, b)

	c := aggregate.Signature([]perfscript.Frame{{Symbol: "f"}}, "p")
	d := aggregate.Signature(nil, "fp")
	require.NotEqual(t, c, d)
}
