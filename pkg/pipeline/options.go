package pipeline

import (
	"io"
	"time"

	log "github.com/rs/zerolog"
)

type PipelineOptions struct {
	status        bool
	statusOut     io.Writer
	statusWidth   int
	statusRefresh time.Duration

	logger log.Logger
}

type PipelineOption func(*Pipeline)

// WithStatus periodically prints parse progress to w, right-aligned to width.
func WithStatus(w io.Writer, width int) PipelineOption {
	return func(p *Pipeline) {
		p.status = true
		p.statusOut = w
		p.statusWidth = width
	}
}

// WithStatusRefresh sets the status refresh period. Non-positive periods
// keep the current one.
func WithStatusRefresh(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.statusRefresh = d
		}
	}
}

func WithLogger(logger log.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}
