package classify

// Tally accumulates cycles per class label and remembers the order in
// which labels were first tallied.
type Tally struct {
	labels []string
	cycles map[string]uint64
}

func NewTally() *Tally {
	return &Tally{cycles: make(map[string]uint64)}
}

func (t *Tally) Add(label string, cycles uint64) {
	if _, ok := t.cycles[label]; !ok {
		t.labels = append(t.labels, label)
	}
	t.cycles[label] += cycles
}

func (t *Tally) Get(label string) (uint64, bool) {
	c, ok := t.cycles[label]
	return c, ok
}

// Labels returns the labels in first-tallied order.
func (t *Tally) Labels() []string {
	return t.labels
}

func (t *Tally) Len() int {
	return len(t.labels)
}

// Totals holds the cycle counts used as percentage bases.
type Totals struct {
	// Total is the sum of the cycles of every event.
	Total uint64
	// Matched excludes the cycles of events that fell through to the
	// unknown bucket.
	Matched uint64
}
