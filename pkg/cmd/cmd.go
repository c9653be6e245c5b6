package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maxgio92/perf-class/internal/output"
	"github.com/maxgio92/perf-class/internal/settings"
	"github.com/maxgio92/perf-class/internal/utils"
	"github.com/maxgio92/perf-class/pkg/classify"
	"github.com/maxgio92/perf-class/pkg/perfscript"
	"github.com/maxgio92/perf-class/pkg/pipeline"
	"github.com/maxgio92/perf-class/pkg/report"
	"github.com/maxgio92/perf-class/pkg/rules"
	"github.com/maxgio92/perf-class/pkg/source"
)

var (
	ErrNoTracePath     = errors.New("no trace path given")
	ErrInvalidStackMax = errors.New("stack max must not be negative")
)

func NewCommand(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <trace>", settings.CmdName),
		Short: "Classify perf script CPU samples into user-defined classes",
		Long: fmt.Sprintf(`
%s reads the output of perf script, matches each sample call stack against an ordered
set of regular expression rules and reports how CPU cycles split across the resulting classes.
Use - as trace to read from standard input. Gzip and zstd compressed traces are detected automatically.
`, settings.CmdName),
		Args:              cobra.ExactArgs(1),
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		RunE:              o.Run,
	}
	cmd.Flags().StringSliceVarP(&o.maps, "map", "m", nil, "Rule files, matched in the listed order (repeatable, comma separated)")
	cmd.Flags().BoolVar(&o.showMatch, "show-match", false, "Print the symbol and class of every matched event")
	cmd.Flags().BoolVar(&o.showFailed, "show-failed", false, "Print symbols that matched no rule")
	cmd.Flags().BoolVar(&o.parseAddress, "parse-address", false, "Keep frame addresses")
	cmd.Flags().BoolVar(&o.cycles, "cycles", false, "Report absolute cycles instead of percentages")
	cmd.Flags().BoolVar(&o.noOutputFailed, "no-output-failed", false, "Leave unmatched symbols out of the report and compute percentages over matched cycles")
	cmd.Flags().Var(&o.denominator, "denominator", "Cycles percentages are computed over (total, matched)")
	cmd.Flags().Float64Var(&o.minPercent, "min", 0, "Minimum percentage of a class to be reported")
	cmd.Flags().StringVar(&o.separator, "separator", settings.DefaultSeparator, "Separator between class and value")
	cmd.Flags().IntVar(&o.stackMax, "stack-max", settings.DefaultStackMax, "Maximum number of frames checked per stack")
	cmd.Flags().VarP(&o.format, "format", "o", "Report format (text, json, table)")

	cmd.Flags().StringVar(&o.xlsxPath, "xlsx", "", "Also write the report to an Excel workbook")
	cmd.Flags().StringVar(&o.promPath, "prom-textfile", "", "Also write the report as Prometheus textfile metrics")
	cmd.Flags().StringVar(&o.pprofPath, "pprof", "", "Also write a pprof profile labelled by class")

	cmd.Flags().BoolVar(&o.status, "status", false, "Periodically print a status of the parsing")
	cmd.Flags().StringVar(&o.LogLevel, "log-level", settings.DefaultLogLevel, "Log level (trace, debug, info, warn, error, fatal, panic)")

	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(
		log.ConsoleWriter{Out: os.Stderr, NoColor: !output.IsTerminal(os.Stderr)},
	).With().Timestamp().Logger()

	opts := NewOptions(
		WithContext(ctx),
		WithLogger(logger),
	)

	if err := NewCommand(opts).Execute(); err != nil {
		cancel()
		os.Exit(1)
	}
}

func (o *Options) Run(cmd *cobra.Command, args []string) error {
	logLevel, err := log.ParseLevel(o.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	o.Logger = o.Logger.Level(logLevel)

	if len(args) == 0 || args[0] == "" {
		return ErrNoTracePath
	}
	if o.stackMax < 0 {
		return ErrInvalidStackMax
	}
	tracePath := args[0]

	ruleSources, err := source.ReadRuleSources(o.maps)
	if err != nil {
		return errors.Wrap(err, "failed to read rule files")
	}
	rs, err := rules.Load(ruleSources)
	if err != nil {
		return errors.Wrap(err, "failed to load rules")
	}
	o.Logger.Debug().
		Int("frame_rules", len(rs.FrameRules())).
		Int("process_rules", len(rs.ProcessRules())).
		Msg("rules loaded")

	trace, err := openTrace(cmd, tracePath)
	if err != nil {
		return err
	}
	defer trace.Close()

	parser := perfscript.NewParser(
		perfscript.WithParseAddress(o.parseAddress),
		perfscript.WithLogger(o.Logger),
	)
	classifier := classify.New(rs,
		classify.WithMaxDepth(o.stackMax),
		classify.WithTallyUnknown(!o.noOutputFailed),
		classify.WithLogger(o.Logger),
	)
	pipelineOpts := []pipeline.PipelineOption{pipeline.WithLogger(o.Logger)}
	if o.status {
		pipelineOpts = append(pipelineOpts, pipeline.WithStatus(cmd.ErrOrStderr(), output.Width(os.Stderr)))
	}

	res, err := pipeline.New(parser, classifier, pipelineOpts...).Run(o.Ctx, trace)
	if err != nil {
		return errors.Wrapf(err, "failed to classify %s", tracePath)
	}

	o.printDiagnostics(cmd.ErrOrStderr(), res)
	fmt.Fprintln(cmd.ErrOrStderr(), report.Summary(res.Totals, len(res.Events)))

	denominator := o.resolveDenominator(cmd)
	entries := report.Build(res.Tally, res.Totals,
		report.WithDenominator(denominator),
		report.WithMinPercent(o.minPercent),
	)
	if err := o.writeReport(cmd.OutOrStdout(), entries, res, denominator); err != nil {
		return errors.Wrap(err, "failed to write report")
	}

	return o.export(entries, res)
}

func openTrace(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == source.Stdin {
		return source.NewReader(cmd.InOrStdin())
	}

	return source.Open(path)
}

// resolveDenominator honours an explicit --denominator, otherwise
// --no-output-failed selects the matched cycles.
func (o *Options) resolveDenominator(cmd *cobra.Command) report.Denominator {
	if cmd.Flags().Changed("denominator") || !o.noOutputFailed {
		return report.Denominator(o.denominator)
	}

	return report.MatchedCycles
}

// printDiagnostics writes match and unknown symbol diagnostics in the
// order events were classified, heaviest first.
func (o *Options) printDiagnostics(w io.Writer, res *pipeline.Result) {
	if !o.showMatch && !o.showFailed {
		return
	}

	// Unknowns holds the first occurrence of each unknown symbol in visit
	// order, so a single cursor finds them while walking the assignments.
	next := 0
	for _, a := range res.Assignments {
		if a.Matched() {
			if o.showMatch {
				fmt.Fprintf(w, "%s -> %s (process %s)\n", a.Subject, a.Label, a.Event.Comm)
				printStack(w, a.Event.Stack)
			}
			continue
		}
		if next >= len(res.Unknowns) || res.Unknowns[next].Symbol != a.Label {
			continue
		}
		u := res.Unknowns[next]
		next++

		if o.showFailed && utils.Percent(u.Cycles, res.Totals.Total) > o.minPercent {
			fmt.Fprintf(w, "Could not find symbol %s (%d cycles) in map, process %s\n", u.Symbol, u.Cycles, u.Comm)
			printStack(w, u.Stack)
		}
	}
}

func printStack(w io.Writer, stack []perfscript.Frame) {
	for _, f := range stack {
		fmt.Fprintf(w, "\t%s\n", f.Symbol)
	}
}

func (o *Options) writeReport(w io.Writer, entries []report.Entry, res *pipeline.Result, d report.Denominator) error {
	switch o.format {
	case formatJSON:
		return report.NewJSONReport(
			report.WithReportEntries(entries),
			report.WithReportTotals(res.Totals),
			report.WithReportEvents(len(res.Events)),
			report.WithReportDenominator(d),
		).WriteReport(w)
	case formatTable:
		return report.WriteTable(w, entries, output.Width(os.Stdout))
	default:
		return report.WriteText(w, entries, o.separator, o.cycles)
	}
}

func (o *Options) export(entries []report.Entry, res *pipeline.Result) error {
	if o.xlsxPath != "" {
		if err := report.WriteXlsx(o.xlsxPath, entries, res.Totals); err != nil {
			return err
		}
		o.Logger.Info().Str("path", o.xlsxPath).Msg("workbook written")
	}
	if o.promPath != "" {
		if err := report.WritePrometheusTextfile(o.promPath, entries, res.Totals); err != nil {
			return err
		}
		o.Logger.Info().Str("path", o.promPath).Msg("metrics written")
	}
	if o.pprofPath != "" {
		if err := report.WritePprof(o.pprofPath, res.Assignments); err != nil {
			return err
		}
		o.Logger.Info().Str("path", o.pprofPath).Msg("profile written")
	}

	return nil
}
