package perfscript

import "github.com/maxgio92/perf-class/internal/settings"

// Frame is one call-stack entry of a perf script sample.
type Frame struct {
	// Address is only set when the parser retains addresses.
	Address  string
	Symbol   string
	Location string
}

func (f Frame) IsKernel() bool {
	return f.Location == settings.KernelLocation
}

// Event is one perf script sample: a header line followed by its stack,
// innermost frame first.
type Event struct {
	Comm   string
	PID    int
	Cycles uint64
	Stack  []Frame

	// Line is the header line number in the trace.
	Line int
}
