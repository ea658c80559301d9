package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"shopmetrics/internal/analytics"
	"shopmetrics/internal/config"
	"shopmetrics/internal/dataprocessing"
	"shopmetrics/internal/exporter"
	"shopmetrics/internal/infrastructure"
	"shopmetrics/internal/services"
	"shopmetrics/pkg/contracts"
	api "shopmetrics/pkg/contracts/api/v1"
	"shopmetrics/pkg/contracts/domain"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	configPath string
	dataDir    string
	format     string
	xlsxPath   string
	csvPath    string
	salesPath  string
	logLevel   string
	version    bool
	req        api.ReportRequest
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetVersionInfo())
		return exitOK
	}

	logger := infrastructure.NewLoggerWithWriter(stderr, opts.logLevel, false).
		With(slog.String("component", "report_cli"))

	if err := generate(context.Background(), opts, stdout, logger); err != nil {
		logger.Error("report failed", slog.String("error", err.Error()))
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "optional config.yaml")
	fs.StringVar(&opts.dataDir, "data", "", "directory holding the source CSV files (defaults to data.dir)")
	fs.StringVar(&opts.format, "format", "text", "output format: json or text")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "also write the report as an Excel workbook")
	fs.StringVar(&opts.csvPath, "csv", "", "also write the filtered sales rows as CSV")
	fs.StringVar(&opts.salesPath, "sales", "", "build the report from a sales CSV written by -csv instead of -data")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	year := fs.Int("year", 0, "analysis year (defaults to report.default_year or the latest year)")
	previous := fs.Int("previous", 0, "comparison year (defaults to the year before, when present)")
	month := fs.Int("month", 0, "restrict to one month, 1-12")
	status := fs.String("status", "", `order status filter, "all" disables it`)
	topN := fs.Int("top", 0, "number of top categories")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	opts.format = strings.ToLower(opts.format)
	if opts.format != "json" && opts.format != "text" {
		return nil, fmt.Errorf("unknown format %q, want json or text", opts.format)
	}

	// only flags given on the command line override the service defaults
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "year":
			opts.req.Year = year
		case "previous":
			opts.req.PreviousYear = previous
		case "month":
			opts.req.Month = month
		case "status":
			opts.req.Status = status
		case "top":
			opts.req.TopN = topN
		}
	})
	if m := opts.req.Month; m != nil && (*m < 1 || *m > 12) {
		return nil, fmt.Errorf("month must be between 1 and 12, got %d", *m)
	}
	if opts.salesPath != "" {
		// an exported sales file is already filtered and joined
		switch {
		case opts.dataDir != "":
			return nil, fmt.Errorf("-sales and -data are mutually exclusive")
		case opts.csvPath != "":
			return nil, fmt.Errorf("-sales and -csv are mutually exclusive")
		case opts.req.Month != nil || opts.req.Status != nil:
			return nil, fmt.Errorf("-month and -status do not apply to -sales")
		}
	}
	return opts, nil
}

func generate(ctx context.Context, opts *options, stdout io.Writer, logger *slog.Logger) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	var (
		report  *domain.Report
		service *services.ReportService
	)
	if opts.salesPath != "" {
		report, err = reportFromSalesFile(opts.salesPath, cfg.Report, opts.req, logger)
		if err != nil {
			return err
		}
	} else {
		dataDir := cfg.Data.Dir
		if opts.dataDir != "" {
			dataDir = opts.dataDir
		}

		service = services.NewReportService(dataDir, cfg.Report, nil, logger)
		if _, err := service.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to load data from %s: %w", dataDir, err)
		}

		report, err = service.Report(ctx, opts.req)
		if err != nil {
			return err
		}
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	default:
		if err := writeText(stdout, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if opts.xlsxPath != "" {
		if err := exporter.ExportReportXLSX(opts.xlsxPath, report); err != nil {
			return err
		}
		logger.Info("workbook written", slog.String("path", opts.xlsxPath))
	}

	if opts.csvPath != "" {
		ds, err := service.Sales(ctx, opts.req)
		if err != nil {
			return err
		}
		if err := exporter.NewSalesExporter(exporter.NewCSVWriter("", logger)).ExportSales(opts.csvPath, ds); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig reads the explicit file when given, otherwise the usual
// .env, config.yaml and SHOPMETRICS_* search.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// reportFromSalesFile computes the report over a previously exported sales
// table. Year and comparison defaults follow the service.
func reportFromSalesFile(path string, defaults config.ReportConfig, req api.ReportRequest, logger *slog.Logger) (*domain.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sales file: %w", err)
	}
	defer f.Close()

	ds, err := dataprocessing.ReadSalesCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	topN := defaults.TopN
	if req.TopN != nil {
		topN = *req.TopN
	}
	calc, err := analytics.NewCalculator(ds, analytics.Config{TopN: topN, Logger: logger})
	if err != nil {
		return nil, err
	}

	year := ds.DefaultYear(defaults.DefaultYear)
	if req.Year != nil {
		year = *req.Year
	}
	previous := req.PreviousYear
	if previous == nil && slices.Contains(ds.AvailableYears(), year-1) {
		p := year - 1
		previous = &p
	}

	logger.Debug("sales file loaded", slog.String("path", path), slog.Int("rows", len(ds.Rows)))
	return calc.GenerateComprehensiveReport(&year, previous), nil
}
