// Command ls-ephem tabulates the ephemerides of catalogue bodies over a range of
// Julian dates.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/litescript/ls-oppositions/internal/config"
	"github.com/litescript/ls-oppositions/internal/dataset"
	"github.com/litescript/ls-oppositions/internal/ephem"
	"github.com/litescript/ls-oppositions/internal/logging"
	"github.com/litescript/ls-oppositions/internal/tabulate"
	"github.com/litescript/ls-oppositions/internal/version"
)

const binaryName = "ls-ephem"

// Default window: January 2000.
const (
	defaultJDMin  = 2451544.5
	defaultJDMax  = 2451575.5
	defaultJDStep = 1.0
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	jdMin, jdMax, jdStep float64
	format               int
	constellations       bool
	objects              string
	version              bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(binaryName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Float64Var(&opts.jdMin, "jd_min", defaultJDMin, "Julian day at which the ephemeris begins")
	fs.Float64Var(&opts.jdMax, "jd_max", defaultJDMax, "Julian day at which the ephemeris ends")
	fs.Float64Var(&opts.jdStep, "jd_step", defaultJDStep, "Interval between lines, in days")
	fs.IntVar(&opts.format, "output_format", 0, "Columns per body: -1 ecliptic xyz, 0 xyz, 1 ra dec, 2 adds mag phase size, 3 adds everything")
	fs.BoolVar(&opts.constellations, "output_constellations", false, "Append the constellation of each body")
	fs.StringVar(&opts.objects, "objects", "ceres", "Comma-separated names or numbers of bodies, e.g. vesta,A1")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s\n\nCompute an ephemeris for a list of minor bodies.\n\nUsage: %s [options]\n", version.String(), binaryName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		for _, a := range fs.Args() {
			fmt.Fprintf(stderr, "Error: unparsed argument <%s>\n", a)
		}
		return opts, errors.New("unparsed arguments")
	}
	if opts.jdStep <= 0 {
		return opts, fmt.Errorf("jd_step must be positive, got %g", opts.jdStep)
	}
	return opts, nil
}

// resolveObjects maps a comma-separated object list to catalogue indices.
// "A<n>" selects the body numbered n.
func resolveObjects(cat *ephem.Catalogue, list string) ([]int, error) {
	var out []int
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := name
		if len(key) > 1 && (key[0] == 'a' || key[0] == 'A') {
			if _, err := strconv.Atoi(key[1:]); err == nil {
				key = key[1:]
			}
		}
		i, ok := cat.Find(key)
		if !ok {
			return nil, fmt.Errorf("Unrecognised object name <%s>", name)
		}
		out = append(out, i)
	}
	if len(out) == 0 {
		return nil, errors.New("no objects requested")
	}
	return out, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if opts.version {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	format, err := tabulate.ParseFormat(opts.format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	logger := logging.NewWithFormat(stderr, logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))

	if err := tabulateEphemeris(ctx, cfg, opts, format, logger, stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "Ephemeris interrupted.")
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func tabulateEphemeris(ctx context.Context, cfg *config.Config, opts options, format tabulate.Format, logger *logging.Logger, out io.Writer) error {
	loader := dataset.NewLoader(cfg, logger)
	cat, err := loader.Catalogue(ctx)
	if err != nil {
		return err
	}
	bodies, err := resolveObjects(cat, opts.objects)
	if err != nil {
		return err
	}

	tableOpts := []tabulate.Option{
		tabulate.WithWorkers(cfg.Scan.Workers),
		tabulate.WithLogger(logger),
	}
	if opts.constellations {
		regions, err := loader.Regions(ctx)
		if err != nil {
			return err
		}
		tableOpts = append(tableOpts, tabulate.WithConstellations(regions))
	}

	table := tabulate.New(ephem.NewKeplerProvider(cat), bodies, format, tableOpts...)
	rows, err := table.Write(ctx, out, opts.jdMin, opts.jdMax, opts.jdStep)
	if err != nil {
		return err
	}
	logger.Debug("ephemeris complete", "rows", rows)
	return nil
}
