package classify

import (
	log "github.com/rs/zerolog"

	"github.com/maxgio92/perf-class/internal/settings"
)

type ClassifierOptions struct {
	maxDepth     int
	tallyUnknown bool

	logger log.Logger
}

type ClassifierOption func(*Classifier)

// WithMaxDepth limits the number of frames, innermost first, matched
// against frame rules.
func WithMaxDepth(depth int) ClassifierOption {
	return func(c *Classifier) {
		c.maxDepth = depth
	}
}

// WithTallyUnknown controls whether unmatched events are tallied under
// their fallback symbol.
func WithTallyUnknown(tally bool) ClassifierOption {
	return func(c *Classifier) {
		c.tallyUnknown = tally
	}
}

func WithLogger(logger log.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = logger
	}
}

func defaultOptions() *ClassifierOptions {
	return &ClassifierOptions{
		maxDepth:     settings.DefaultStackMax,
		tallyUnknown: true,
		logger:       log.Nop(),
	}
}
