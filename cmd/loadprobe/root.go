package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"loadprobe/internal/catalog"
)

// Mode keywords.
const (
	ModeQuick     = "quick"
	ModeCambridge = "cambridge"
	ModeLoad      = "load"
	ModeMonitor   = "monitor"
)

var errUnknownMode = errors.New("unknown mode")

type options struct {
	configPath  string
	output      string
	exportDir   string
	noExport    bool
	quiet       bool
	verbose     bool
	rps         int
	warmup      int
	catalogName string
	metricsAddr string
	logLevel    string
	logFormat   string
}

// invocation is the parsed positional part of the command line.
type invocation struct {
	baseURL  string
	mode     string
	count    int
	users    int
	duration time.Duration
	interval time.Duration
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "loadprobe [baseURL] [mode] [args...]",
		Short: "Probe a web application's endpoints and report latency and availability",
		Long: `loadprobe drives weighted-random HTTP probes against a target and reports
summary statistics, a per-endpoint breakdown and recommendations.

Modes:
  quick [count]            sequential probes over the default catalog (default 100)
  cambridge [count]        sequential probes over the validation catalog (default 50)
  load [users] [seconds]   concurrent users with think time (default 10 users, 30s)
  monitor [interval]       continuous probing every interval seconds (default 5) until interrupted`,
		Args:          cobra.MaximumNArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return &exitError{code: ExitError, err: fmt.Errorf("--output must be 'text' or 'json', got %q", opts.output)}
			}
			return run(cmd, opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "path to YAML config file")
	f.StringVar(&opts.output, "output", "text", "output format: text, json")
	f.StringVar(&opts.exportDir, "export-dir", "", "directory for the JSON export (default: current directory)")
	f.BoolVar(&opts.noExport, "no-export", false, "do not write the JSON export file")
	f.BoolVar(&opts.quiet, "quiet", false, "suppress progress output during the run")
	f.BoolVar(&opts.verbose, "verbose", false, "log every request and response at debug level")
	f.IntVar(&opts.rps, "rps", 0, "global cap on probes per second (0 = unlimited)")
	f.IntVar(&opts.warmup, "warmup", 0, "warmup probes per worker before samples are recorded")
	f.StringVar(&opts.catalogName, "catalog", "", "endpoint catalog: default, validation, comprehensive")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9102)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "", "log format: text, json")

	return cmd
}

// parseArgs interprets `[baseURL] [mode] [args...]`. A first argument that
// is a mode keyword rather than a URL is taken as the mode.
func parseArgs(args []string, defaultTarget string) (invocation, error) {
	inv := invocation{baseURL: defaultTarget, mode: ModeQuick}

	if len(args) > 0 && !isMode(args[0]) {
		inv.baseURL = args[0]
		args = args[1:]
	}
	if len(args) > 0 {
		inv.mode = strings.ToLower(args[0])
		args = args[1:]
	}
	if !isMode(inv.mode) {
		return inv, fmt.Errorf("%w %q", errUnknownMode, inv.mode)
	}
	if !strings.HasPrefix(inv.baseURL, "http://") && !strings.HasPrefix(inv.baseURL, "https://") {
		return inv, fmt.Errorf("base URL must start with http:// or https://, got %q", inv.baseURL)
	}

	var err error
	switch inv.mode {
	case ModeQuick:
		inv.count, err = positiveArg(args, 0, 100, "count")
	case ModeCambridge:
		inv.count, err = positiveArg(args, 0, 50, "count")
	case ModeLoad:
		if inv.users, err = positiveArg(args, 0, 10, "users"); err != nil {
			break
		}
		var secs int
		secs, err = positiveArg(args, 1, 30, "seconds")
		inv.duration = time.Duration(secs) * time.Second
	case ModeMonitor:
		var secs int
		secs, err = positiveArg(args, 0, 5, "interval")
		inv.interval = time.Duration(secs) * time.Second
	}
	if err != nil {
		return inv, err
	}

	maxArgs := map[string]int{ModeQuick: 1, ModeCambridge: 1, ModeLoad: 2, ModeMonitor: 1}[inv.mode]
	if len(args) > maxArgs {
		return inv, fmt.Errorf("too many arguments for %s mode", inv.mode)
	}
	return inv, nil
}

// defaultCatalog maps a mode to the catalog it probes unless --catalog says otherwise.
func defaultCatalog(mode string) string {
	if mode == ModeCambridge {
		return catalog.NameValidation
	}
	return catalog.NameDefault
}

func isMode(s string) bool {
	switch strings.ToLower(s) {
	case ModeQuick, ModeCambridge, ModeLoad, ModeMonitor:
		return true
	}
	return false
}

func positiveArg(args []string, i, def int, name string) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, args[i])
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid %s %d: must be >= 1", name, n)
	}
	return n, nil
}
