package settings

const CmdName = "perf-class"

const (
	DefaultSeparator = ";"
	DefaultStackMax  = 100
	DefaultLogLevel  = "info"

	// KernelLocation is the location perf script prints for kernel symbols.
	KernelLocation = "[kernel.kallsyms]"
	// KernelMarker is prepended to kernel symbols before frame rule matching.
	KernelMarker = "k"
)
