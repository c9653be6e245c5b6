package cmd

import (
	"context"

	log "github.com/rs/zerolog"

	"github.com/maxgio92/perf-class/internal/settings"
	"github.com/maxgio92/perf-class/pkg/report"
)

type CommonOptions struct {
	Ctx      context.Context
	Logger   log.Logger
	LogLevel string
}

type Options struct {
	maps []string

	showMatch      bool
	showFailed     bool
	parseAddress   bool
	cycles         bool
	noOutputFailed bool
	status         bool

	denominator denominatorValue
	format      formatValue
	minPercent  float64
	separator   string
	stackMax    int

	xlsxPath  string
	promPath  string
	pprofPath string

	*CommonOptions
}

type Option func(o *Options)

func NewOptions(opts ...Option) *Options {
	o := new(Options)
	o.CommonOptions = &CommonOptions{
		Ctx:      context.Background(),
		Logger:   log.Nop(),
		LogLevel: settings.DefaultLogLevel,
	}
	o.denominator = denominatorValue(report.TotalCycles)
	o.format = formatText
	o.separator = settings.DefaultSeparator
	o.stackMax = settings.DefaultStackMax

	for _, f := range opts {
		f(o)
	}

	return o
}

func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.Ctx = ctx
	}
}

func WithLogger(logger log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func WithLogLevel(level string) Option {
	return func(o *Options) {
		o.LogLevel = level
	}
}
