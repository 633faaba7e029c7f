package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-oppositions/internal/version"
)

const numInputs = 7

var errUsage = errors.New("usage error")

// options are the parsed positional arguments.
type options struct {
	startYear, startMonth, startDay int
	endYear, endMonth, endDay       int
	magLimit                        float64

	help    bool
	version bool
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s\nType '%s -help' for a list of available command-line options.",
		errUsage, fmt.Sprintf(format, args...), binaryName)
}

// parseArgs reads the seven numeric inputs. A help or version switch stops parsing.
// Arguments that parse as numbers are inputs even when they start with '-'.
func parseArgs(args []string) (options, error) {
	var opts options
	var inputs []float64

	for _, arg := range args {
		if arg == "" {
			continue
		}
		if strings.HasPrefix(arg, "-") {
			if _, ok := parseNumber(arg); !ok {
				switch arg {
				case "-v", "-version", "--version":
					opts.version = true
					return opts, nil
				case "-h", "-help", "--help":
					opts.help = true
					return opts, nil
				default:
					return opts, usageError("Received switch '%s' which was not recognised.", arg)
				}
			}
		}
		if len(inputs) >= numInputs {
			return opts, usageError("Received too many command line inputs.")
		}
		v, ok := parseNumber(arg)
		if !ok {
			return opts, usageError("Received command line option '%s' which should have been a numeric value.", arg)
		}
		inputs = append(inputs, v)
	}

	if len(inputs) != numInputs {
		return opts, usageError("%s should be provided %d numeric values on the command line. Only %d were received.",
			binaryName, numInputs, len(inputs))
	}

	opts.startYear, opts.startMonth, opts.startDay = int(inputs[0]), int(inputs[1]), int(inputs[2])
	opts.endYear, opts.endMonth, opts.endDay = int(inputs[3]), int(inputs[4]), int(inputs[5])
	opts.magLimit = inputs[6]
	return opts, nil
}

// parseNumber accepts plain decimal numbers only. Hex floats, nan and inf are rejected.
func parseNumber(s string) (float64, bool) {
	if strings.ContainsFunc(s, func(r rune) bool { return !strings.ContainsRune("0123456789+-.eE", r) }) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

var helpTitleStyle = lipgloss.NewStyle().Bold(true)

func helpText() string {
	title := version.String()
	return helpTitleStyle.Render(title) + "\n" +
		strings.Repeat("-", len(title)) + "\n\n" +
		"Usage: " + binaryName + " <YearMin> <MonthMin> <DayMin>  <YearMax> <MonthMax> <DayMax>  <LimitingMagnitude>\n" +
		"-h, --help:       Display this help.\n" +
		"-v, --version:    Display version number.\n"
}
