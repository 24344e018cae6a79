package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"loadprobe/internal/catalog"
	"loadprobe/internal/collector"
	"loadprobe/internal/config"
	"loadprobe/internal/core"
	"loadprobe/internal/driver"
	"loadprobe/internal/output"
	"loadprobe/internal/probe"
	"loadprobe/internal/progress"
	"loadprobe/internal/ratelimit"
	"loadprobe/internal/report"
	"loadprobe/internal/telemetry"
)

func run(cmd *cobra.Command, opts options, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath, ".env", ".env.local")
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}
	applyFlags(cfg, opts)

	logger, err := newLogger(stderr, cfg.Log.Level, cfg.Log.Format, opts.verbose)
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}

	inv, err := parseArgs(args, cfg.Target)
	if err != nil {
		if errors.Is(err, errUnknownMode) {
			fmt.Fprintln(stderr, cmd.UsageString())
		}
		return &exitError{code: ExitError, err: err}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var interrupted atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			interrupted.Store(true)
			if !opts.quiet && inv.mode != ModeMonitor {
				fmt.Fprintln(stderr, "\nReceived interrupt signal, shutting down...")
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	code, err := execMode(ctx, cfg, opts, inv, logger, stdout, stderr, &interrupted)
	if err != nil {
		return &exitError{code: code, err: err}
	}
	if code != ExitSuccess {
		return &exitError{code: code, err: errSilent}
	}
	return nil
}

// applyFlags lets explicitly set flags win over the file and environment.
func applyFlags(cfg *config.Config, opts options) {
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if opts.metricsAddr != "" {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if opts.exportDir != "" {
		cfg.ExportDir = opts.exportDir
	}
	if opts.rps > 0 {
		cfg.Execution.RPS = opts.rps
	}
	if opts.warmup > 0 {
		cfg.Execution.WarmupIterations = opts.warmup
	}
}

func execMode(ctx context.Context, cfg *config.Config, opts options, inv invocation, logger *logrus.Logger, stdout, stderr io.Writer, interrupted *atomic.Bool) (int, error) {
	catalogName := opts.catalogName
	if catalogName == "" {
		catalogName = defaultCatalog(inv.mode)
	}
	endpoints, err := cfg.Catalog(catalogName)
	if err != nil {
		return ExitError, err
	}
	selector, err := catalog.NewSelector(endpoints, nil)
	if err != nil {
		return ExitError, fmt.Errorf("catalog %s: %w", catalogName, err)
	}

	prober := probe.New(inv.baseURL, cfg.Client.Timeout)
	prober.UserAgent = cfg.Client.UserAgent
	if opts.verbose {
		prober.Debug = probe.NewDebugLogger(logger)
	}

	set := collector.New()
	var reporter core.Reporter = set
	if cfg.MetricsAddr != "" {
		rec := telemetry.NewRecorder(set)
		reporter = rec
		go func() {
			if err := rec.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.WithError(err).Error("metrics server failed")
			}
		}()
	}

	deps := driver.Deps{
		Prober:   prober,
		Selector: selector,
		Reporter: reporter,
		Logger:   logger,
		Warmup:   cfg.Execution.WarmupIterations,
	}

	log := logger.WithFields(logrus.Fields{"mode": inv.mode, "target": inv.baseURL, "catalog": catalogName})
	if cfg.Execution.RPS > 0 {
		limiter := ratelimit.NewRateLimiter(cfg.Execution.RPS)
		deps.Limiter = limiter
		log.WithFields(limiter.Fields()).Info("rate limit enabled")
		defer func() { log.WithFields(limiter.Fields()).Info("rate limit summary") }()
	}
	prog := progress.NewProgress(set, opts.quiet || opts.output == "json")
	prog.SetOutput(stderr)

	fin := &finisher{
		cfg:     cfg,
		opts:    opts,
		inv:     inv,
		set:     set,
		log:     log,
		stdout:  stdout,
		checked: !interrupted.Load(),
	}

	switch inv.mode {
	case ModeQuick, ModeCambridge:
		var seq *driver.Sequential
		if inv.mode == ModeCambridge {
			seq = driver.NewValidation(deps, inv.count)
		} else {
			seq = driver.NewSequential(deps, inv.count)
		}
		seq.OnProgress = func(done, total int) {
			prog.Printf("Progress: %d/%d requests", done, total)
		}
		prog.Printf("loadprobe %s: %d requests against %s", inv.mode, inv.count, inv.baseURL)
		if err := seq.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return ExitError, err
		}

	case ModeLoad:
		l := driver.NewLoad(deps, inv.users, inv.duration)
		if cfg.Load.ThinkMin > 0 || cfg.Load.ThinkMax > 0 {
			l.ThinkMin, l.ThinkMax = cfg.Load.ThinkMin, cfg.Load.ThinkMax
		}
		prog.Printf("loadprobe load: %d users for %v against %s", inv.users, inv.duration, inv.baseURL)
		prog.Start()
		stats, err := l.Run(ctx)
		prog.Stop()
		if err != nil {
			return ExitError, err
		}
		log.WithFields(logrus.Fields{"samples": stats.Total(), "panics": stats.Panics}).Debug("load run finished")

	case ModeMonitor:
		m := driver.NewMonitor(deps, inv.interval)
		if cfg.Monitor.Window > 0 {
			m.Window = cfg.Monitor.Window
		}
		m.Out = stdout
		if opts.output == "json" {
			m.Out = stderr
		}
		var code int
		m.OnStop = func(samples []core.Sample) error {
			var err error
			code, err = fin.finish(samples)
			return err
		}
		prog.Printf("loadprobe monitor: every %v against %s (Ctrl+C to stop)", inv.interval, inv.baseURL)
		if err := m.Run(ctx); err != nil {
			return ExitError, err
		}
		return code, nil
	}

	fin.checked = !interrupted.Load()
	return fin.finish(set.Samples())
}

// finisher turns a finished run into a report, prints it, exports it and
// decides the exit code.
type finisher struct {
	cfg     *config.Config
	opts    options
	inv     invocation
	set     *collector.ResultSet
	log     logrus.FieldLogger
	stdout  io.Writer
	checked bool // apply thresholds; false for interrupted fixed-length runs
}

func (f *finisher) finish(samples []core.Sample) (int, error) {
	f.set.Close()

	r, err := report.GenerateWithDuration(samples, f.set.Duration())
	if err != nil {
		return ExitError, err
	}

	var thresholds *report.ThresholdResults
	if f.checked && f.cfg.Thresholds != nil {
		thresholds = f.cfg.Thresholds.Check(&r.Summary)
	}

	export := output.NewExport(r, f.inv.baseURL, f.inv.mode, time.Now())
	if f.opts.output == "json" {
		if err := output.WriteJSON(f.stdout, export); err != nil {
			return ExitError, err
		}
	} else {
		output.FormatText(f.stdout, r, thresholds, isTerminal(f.stdout))
	}

	if !f.opts.noExport {
		path, err := output.WriteFile(f.cfg.ExportDir, export)
		if err != nil {
			return ExitError, err
		}
		f.log.WithFields(logrus.Fields{"path": path, "runId": export.Metadata.RunID}).Info("results exported")
	}

	if thresholds != nil && !thresholds.Passed {
		f.log.WithField("violations", len(thresholds.Violations())).Warn("threshold check failed")
		return ExitThresholdFailed, nil
	}
	return ExitSuccess, nil
}

// isTerminal reports whether w is a character device worth styling.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
