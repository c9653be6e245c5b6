// Package pipeline streams a perf script trace through parsing,
// aggregation and classification.
package pipeline

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maxgio92/perf-class/internal/output"
	"github.com/maxgio92/perf-class/pkg/aggregate"
	"github.com/maxgio92/perf-class/pkg/classify"
	"github.com/maxgio92/perf-class/pkg/perfscript"
)

const (
	eventsChBufSize      = 4096
	defaultStatusRefresh = time.Second
)

var (
	ErrParserNil     = errors.New("parser is nil")
	ErrClassifierNil = errors.New("classifier is nil")
)

type Result struct {
	*classify.Result

	// Events is the number of distinct aggregated events.
	Events []*aggregate.AggregatedEvent
	// Parsed is the number of raw events read from the trace.
	Parsed uint64
}

type Pipeline struct {
	parser     *perfscript.Parser
	classifier *classify.Classifier

	parsed   atomic.Uint64
	consumed atomic.Uint64
	distinct atomic.Uint64

	*PipelineOptions
}

func New(parser *perfscript.Parser, classifier *classify.Classifier, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		parser:     parser,
		classifier: classifier,
		PipelineOptions: &PipelineOptions{
			statusRefresh: defaultStatusRefresh,
			logger:        log.Nop(),
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run parses r, aggregates its events and classifies them.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Result, error) {
	if p.classifier == nil {
		return nil, ErrClassifierNil
	}
	agg, err := p.Aggregate(ctx, r)
	if err != nil {
		return nil, err
	}
	p.logger.Debug().
		Uint64("parsed", p.parsed.Load()).
		Int("distinct", agg.Len()).
		Uint64("cycles", agg.TotalCycles()).
		Msg("trace aggregated")

	return &Result{
		Result: p.classifier.Classify(agg.Events()),
		Events: agg.Events(),
		Parsed: p.parsed.Load(),
	}, nil
}

// Aggregate parses r in a separate goroutine and folds each event into an
// aggregator as it arrives, so raw events are never all held in memory.
func (p *Pipeline) Aggregate(ctx context.Context, r io.Reader) (*aggregate.Aggregator, error) {
	if p.parser == nil {
		return nil, ErrParserNil
	}
	p.parsed.Store(0)
	p.consumed.Store(0)
	p.distinct.Store(0)

	g, ctx := errgroup.WithContext(ctx)
	eventsCh := make(chan *perfscript.Event, eventsChBufSize)

	g.Go(func() error {
		defer close(eventsCh)
		return p.parser.Parse(r, func(evt *perfscript.Event) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case eventsCh <- evt:
				return nil
			}
		})
	})

	stopStatus := p.printStatusBar(ctx)

	agg := aggregate.New()
	for evt := range eventsCh {
		agg.Add(evt)
		p.parsed.Add(1)
		p.consumed.Add(1)
		p.distinct.Store(uint64(agg.Len()))
	}
	stopStatus()

	// The parser goroutine is the only one that fails; the consumer drains
	// the channel until it is closed.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return agg, nil
}

func (p *Pipeline) printStatusBar(ctx context.Context) (stop func()) {
	if !p.status || p.statusOut == nil {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		output.StatusBar(ctx, p.statusRefresh, p.printStatus)
	}()

	return func() {
		cancel()
		wg.Wait()
		p.printStatus()
		io.WriteString(p.statusOut, "\n")
	}
}

func (p *Pipeline) printStatus() {
	output.PrintRight(p.statusOut, p.statusWidth, output.PrettyParseStatus(
		p.parsed.Load(),
		p.distinct.Load(),
		// events rate reset at each bar refresh.
		p.consumed.Swap(0)*uint64(time.Second)/uint64(p.statusRefresh),
	))
}
