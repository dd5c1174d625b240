// Command macrocharts renders the chart gallery of a workbook to PNG files
// and optionally prints the regression reports and exports the view.
//
// Usage:
//
//	macrocharts -workbook Economic_Indicators.xlsx -out charts -report
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"macrodash/internal/analysis"
	"macrodash/internal/catalog"
	"macrodash/internal/charts"
	"macrodash/internal/config"
	"macrodash/internal/dataset"
	"macrodash/internal/exporter"
	"macrodash/internal/infrastructure"
	"macrodash/internal/table"
	"macrodash/internal/workbook"
	"macrodash/pkg/contracts"
)

const (
	viewCSVName  = "economic_indicators_view.csv"
	viewXLSXName = "economic_indicators_view.xlsx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	default:
		fmt.Fprintln(os.Stderr, "macrocharts:", err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	workbook string
	out      string
	export   string
	start    time.Time
	end      time.Time
	report   bool
	width    int
	height   int
	workers  int
}

func parseFlags(args []string, cfg *config.Config, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("macrocharts", flag.ContinueOnError)
	fs.SetOutput(output)
	workbookPath := fs.String("workbook", cfg.Data.WorkbookPath, "path to the indicators workbook")
	out := fs.String("out", cfg.Charts.OutputDir, "directory for the chart PNGs")
	export := fs.String("export", "", "directory for the filtered view as CSV and XLSX (empty to skip)")
	start := fs.String("start", cfg.Data.DefaultStart, "window start, YYYY-MM-DD")
	end := fs.String("end", cfg.Data.DefaultEnd, "window end, YYYY-MM-DD")
	report := fs.Bool("report", false, "print the regression reports")
	width := fs.Int("width", cfg.Charts.Width, "chart width in pixels")
	height := fs.Int("height", cfg.Charts.Height, "chart height in pixels")
	workers := fs.Int("workers", cfg.Charts.Workers, "charts rendered concurrently")
	version := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *version {
		fmt.Fprintln(output, contracts.GetVersionString())
		return nil, flag.ErrHelp
	}

	opts := &options{
		workbook: *workbookPath,
		out:      *out,
		export:   *export,
		report:   *report,
		width:    *width,
		height:   *height,
		workers:  *workers,
	}
	var err error
	if opts.start, err = time.Parse(config.DateLayout, *start); err != nil {
		return nil, fmt.Errorf("invalid -start %q", *start)
	}
	if opts.end, err = time.Parse(config.DateLayout, *end); err != nil {
		return nil, fmt.Errorf("invalid -end %q", *end)
	}
	if opts.end.Before(opts.start) {
		return nil, fmt.Errorf("-end %s is before -start %s", *end, *start)
	}
	return opts, nil
}

// run writes the chart table and reports to stdout and logs to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		return err
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	ctx = infrastructure.EnsureTraceID(ctx)

	cat := catalog.Default()
	if cfg.Data.CatalogFile != "" {
		if cat, err = catalog.LoadFile(cfg.Data.CatalogFile); err != nil {
			return err
		}
	}

	store := dataset.NewStore(workbook.NewFileSource(opts.workbook, logger), cat, logger)
	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if snap.IsEmpty() {
		return fmt.Errorf("no data in %s: %v", opts.workbook, snap.Warnings())
	}

	started := time.Now()
	results, err := charts.RenderAll(ctx, opts.out, snap.Frames(opts.start, opts.end), opts.width, opts.height, opts.workers)
	if err != nil {
		return err
	}
	written := printResults(stdout, results)
	logger.Info("charts rendered",
		slog.String("dir", opts.out),
		slog.Int("written", written),
		slog.Int("skipped", len(results)-written),
		slog.Duration("duration", time.Since(started)))

	if opts.export != "" {
		if err := exportView(opts, snap, logger, stdout); err != nil {
			return err
		}
	}

	if opts.report {
		return printReports(ctx, stdout, snap.Monthly().FilterRange(opts.start, opts.end))
	}
	return nil
}

func printResults(w io.Writer, results []charts.Result) int {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHART\tSTATUS\tFILE")
	written := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\tskipped\t%v\n", r.Name, r.Err)
			continue
		}
		written++
		fmt.Fprintf(tw, "%s\tok\t%s\n", r.Name, r.Path)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d of %d charts written\n", written, len(results))
	return written
}

func exportView(opts *options, snap *dataset.Snapshot, logger *slog.Logger, w io.Writer) error {
	view := snap.View(opts.start, opts.end)
	ex := exporter.NewWriter(opts.export, logger)

	csvPath, err := ex.WriteCSVFile(viewCSVName, view, exporter.DefaultOptions())
	if err != nil {
		return err
	}
	xlsxPath, err := ex.WriteXLSXFile(viewXLSXName, view)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "view exported to %s and %s\n", csvPath, xlsxPath)
	return nil
}

// printReports prints every standard regression. A regression that cannot
// be fitted is reported and the others still run.
func printReports(ctx context.Context, w io.Writer, monthly *table.Table) error {
	specs := analysis.Specs()
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		report, err := analysis.Run(ctx, monthly, specs[name])
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(w, "\n%s: %v\n", name, err)
			continue
		}
		fmt.Fprintln(w)
		if err := report.WriteSummary(w); err != nil {
			return err
		}
	}
	return nil
}
