package report

import (
	"os"
	"strconv"

	"github.com/google/pprof/profile"
	"github.com/pkg/errors"

	"github.com/maxgio92/perf-class/internal/utils"
	"github.com/maxgio92/perf-class/pkg/classify"
	"github.com/maxgio92/perf-class/pkg/perfscript"
)

const (
	labelClass = "class"
	labelComm  = "comm"
	labelMatch = "match"
)

type funcKey struct {
	name, file string
}

type profileBuilder struct {
	prof      *profile.Profile
	mappings  map[string]*profile.Mapping
	functions map[funcKey]*profile.Function
	locations map[perfscript.Frame]*profile.Location
}

// BuildProfile converts classified events to a pprof profile. Each sample
// carries its class, process name and match kind as string labels, and
// the process name as the outermost frame.
func BuildProfile(assignments []classify.Assignment) *profile.Profile {
	b := &profileBuilder{
		prof: &profile.Profile{
			SampleType: []*profile.ValueType{{
				Type: "cycles",
				Unit: "count",
			}},
			PeriodType: &profile.ValueType{
				Type: "cycles",
				Unit: "count",
			},
			Period: 1,
		},
		mappings:  make(map[string]*profile.Mapping),
		functions: make(map[funcKey]*profile.Function),
		locations: make(map[perfscript.Frame]*profile.Location),
	}

	for _, a := range assignments {
		locs := make([]*profile.Location, 0, len(a.Event.Stack)+1)
		for _, f := range a.Event.Stack {
			locs = append(locs, b.location(f))
		}
		locs = append(locs, b.location(perfscript.Frame{Symbol: a.Event.Comm}))

		b.prof.Sample = append(b.prof.Sample, &profile.Sample{
			Location: locs,
			Value:    []int64{int64(a.Event.Cycles)},
			Label: map[string][]string{
				labelClass: {utils.StripPadding(a.Label)},
				labelComm:  {a.Event.Comm},
				labelMatch: {a.Kind.String()},
			},
		})
	}

	return b.prof
}

func (b *profileBuilder) location(f perfscript.Frame) *profile.Location {
	if l, ok := b.locations[f]; ok {
		return l
	}

	l := &profile.Location{
		ID:      uint64(len(b.prof.Location) + 1),
		Mapping: b.mapping(f.Location),
	}
	if f.Address != "" {
		if addr, err := strconv.ParseUint(f.Address, 16, 64); err == nil {
			l.Address = addr
		}
	}
	l.Line = []profile.Line{{Function: b.function(f.Symbol, f.Location)}}

	b.prof.Location = append(b.prof.Location, l)
	b.locations[f] = l

	return l
}

func (b *profileBuilder) mapping(file string) *profile.Mapping {
	if file == "" {
		return nil
	}
	if m, ok := b.mappings[file]; ok {
		return m
	}

	m := &profile.Mapping{
		ID:   uint64(len(b.prof.Mapping) + 1),
		File: file,
	}
	b.prof.Mapping = append(b.prof.Mapping, m)
	b.mappings[file] = m

	return m
}

func (b *profileBuilder) function(name, file string) *profile.Function {
	key := funcKey{name: name, file: file}
	if fn, ok := b.functions[key]; ok {
		return fn
	}

	fn := &profile.Function{
		ID:         uint64(len(b.prof.Function) + 1),
		Name:       name,
		SystemName: name,
		Filename:   file,
	}
	b.prof.Function = append(b.prof.Function, fn)
	b.functions[key] = fn

	return fn
}

// WritePprof writes a gzip-compressed pprof profile of assignments to path.
func WritePprof(path string, assignments []classify.Assignment) error {
	prof := BuildProfile(assignments)
	if err := prof.CheckValid(); err != nil {
		return errors.Wrap(err, "invalid profile")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	if err := prof.Write(f); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	return f.Close()
}
