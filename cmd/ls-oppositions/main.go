// Command ls-oppositions searches a minor-body catalogue for oppositions, closest
// approaches and brightness peaks between two dates.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/litescript/ls-oppositions/internal/astro"
	"github.com/litescript/ls-oppositions/internal/config"
	"github.com/litescript/ls-oppositions/internal/dataset"
	"github.com/litescript/ls-oppositions/internal/ephem"
	"github.com/litescript/ls-oppositions/internal/logging"
	"github.com/litescript/ls-oppositions/internal/metrics"
	"github.com/litescript/ls-oppositions/internal/record"
	"github.com/litescript/ls-oppositions/internal/scan"
	"github.com/litescript/ls-oppositions/internal/state"
	"github.com/litescript/ls-oppositions/internal/ui"
	"github.com/litescript/ls-oppositions/internal/version"
)

const binaryName = "ls-oppositions"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, strings.TrimPrefix(err.Error(), errUsage.Error()+": "))
		return 1
	}
	if opts.version {
		fmt.Fprintln(stdout, version.String())
		return 0
	}
	if opts.help {
		fmt.Fprint(stdout, helpText())
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	logger := logging.NewWithFormat(stderr, logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))

	start, end, err := searchWindow(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr, reg, logger)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	stateMgr := state.NewManager(state.DefaultConfig())
	job := &scanJob{
		cfg:      cfg,
		opts:     opts,
		start:    start,
		end:      end,
		logger:   logger,
		metrics:  m,
		stateMgr: stateMgr,
		out:      stdout,
	}

	if !useUI(cfg.UI, stdout, stderr) {
		sum, err := job.run(ctx)
		stateMgr.Finish(sum, err)
		return report(stderr, err)
	}

	// The TUI draws on stderr. Records go to stdout, held back until the TUI exits
	// when both streams share the terminal.
	var held bytes.Buffer
	if isTerminal(stdout) {
		job.out = &held
	}
	logger.SetOutput(io.Discard)

	done := make(chan error, 1)
	go func() {
		sum, err := job.run(ctx)
		stateMgr.Finish(sum, err)
		done <- err
	}()

	title := fmt.Sprintf("%04d-%02d-%02d to %04d-%02d-%02d · magnitude < %.1f",
		opts.startYear, opts.startMonth, opts.startDay, opts.endYear, opts.endMonth, opts.endDay, opts.magLimit)
	p := tea.NewProgram(ui.New(stateMgr, title), tea.WithOutput(stderr), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(stderr, "Error running TUI: %v\n", err)
	}
	cancel()
	scanErr := <-done

	logger.SetOutput(stderr)
	if _, err := io.Copy(stdout, &held); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return report(stderr, scanErr)
}

// searchWindow converts the input dates, taken at noon, into Julian dates.
func searchWindow(opts options) (float64, float64, error) {
	start, err := astro.JulianDay(opts.startYear, opts.startMonth, opts.startDay, 12, 0, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("start date: %w", err)
	}
	end, err := astro.JulianDay(opts.endYear, opts.endMonth, opts.endDay, 12, 0, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("end date: %w", err)
	}
	if end < start {
		return 0, 0, errors.New("end date precedes start date")
	}
	return start, end, nil
}

func report(stderr io.Writer, err error) int {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "Scan interrupted.")
		} else {
			fmt.Fprintf(stderr, "Scan failed: %v\n", err)
		}
		return 1
	}
	return 0
}

func useUI(mode string, stdout, stderr io.Writer) bool {
	switch strings.ToLower(mode) {
	case "off":
		return false
	case "on":
		return isTerminal(stderr)
	default:
		return isTerminal(stderr) && !isTerminal(stdout)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// scanJob loads the inputs and runs both passes.
type scanJob struct {
	cfg        *config.Config
	opts       options
	start, end float64
	logger     *logging.Logger
	metrics    *metrics.Metrics
	stateMgr   *state.Manager
	out        io.Writer
}

func (j *scanJob) run(ctx context.Context) (scan.Summary, error) {
	loader := dataset.NewLoader(j.cfg, j.logger)

	j.stateMgr.SetStatus("Loading constellation boundaries...")
	regions, err := loader.Regions(ctx)
	if err != nil {
		return scan.Summary{}, err
	}

	j.stateMgr.SetStatus("Loading orbital elements...")
	cat, err := loader.Catalogue(ctx)
	if err != nil {
		return scan.Summary{}, err
	}

	format, err := record.ParseFormat(j.cfg.Output)
	if err != nil {
		return scan.Summary{}, err
	}
	rec := record.NewRecorder(j.out, format, regions, j.logger)
	rec.AddListener(j.stateMgr.OnRecord)
	rec.AddListener(func(r record.Record) {
		j.metrics.EventsRecorded.WithLabelValues(r.KindName, strconv.FormatBool(r.Reported)).Inc()
	})

	scanner := scan.New(ephem.NewKeplerProvider(cat), cat, rec,
		scan.WithWorkers(j.cfg.Scan.Workers),
		scan.WithLogger(j.logger),
		scan.WithMetrics(j.metrics),
		scan.WithObserver(j.stateMgr),
		scan.WithSteps(j.cfg.Scan.CoarseStepDays, j.cfg.FineStepDays()),
	)

	j.stateMgr.SetStatus("Scanning...")
	sum, err := scanner.Run(ctx, j.start, j.end, j.opts.magLimit)
	if err != nil {
		return sum, err
	}
	j.logger.Info("scan complete",
		"secure", sum.Secure,
		"selected", sum.Selected,
		"events", sum.FineEvents,
		"written", rec.Written(),
		"duration", sum.Duration,
	)
	return sum, nil
}
