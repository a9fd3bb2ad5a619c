package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/workload"
	"github.com/benz9527/xrbtree/observability"
	"github.com/benz9527/xrbtree/xlog"
)

const appName = "rbtree-check"

type options struct {
	max         int
	seed        uint64
	workers     int
	logLevel    string
	logEncoder  xlog.LogEncoderType
	metrics     observability.MetricsExporterKind
	metricsAddr string
	dumpDir     string
	rmSucc      bool
	skipStress  bool
}

func parseFlags(args []string, errOut io.Writer) (*options, error) {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SetOutput(errOut)

	opts := &options{}
	var logEncoder, metrics string
	fs.IntVar(&opts.max, "max", workload.DefaultMax, "number of keys of the many-values and stress scenarios")
	fs.Uint64Var(&opts.seed, "seed", uint64(time.Now().UnixNano()), "seed of the random scenarios")
	fs.IntVar(&opts.workers, "workers", 0, "number of scenarios run at once, GOMAXPROCS by default")
	fs.StringVar(&opts.logLevel, "log-level", os.Getenv("XLOG_LVL"), "log level: debug, info, warn or error")
	fs.StringVar(&logEncoder, "log-encoder", "text", "log encoder: json or text")
	fs.StringVar(&metrics, "metrics", string(observability.NoneMetricsExporter), "metrics exporter: none, stdout or prometheus")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "address serving /metrics of the prometheus exporter")
	fs.StringVar(&opts.dumpDir, "dump-dir", "", "directory receiving the final keys of every scenario")
	fs.BoolVar(&opts.rmSucc, "rm-succ", false, "reduce a removed node by its successor first")
	fs.BoolVar(&opts.skipStress, "skip-stress", false, "skip the stress scenario")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.max <= 0 {
		return nil, fmt.Errorf("--max must be positive, got %d", opts.max)
	}
	var ok bool
	if opts.logEncoder, ok = xlog.ParseLogEncoder(logEncoder); !ok {
		return nil, fmt.Errorf("unknown --log-encoder %q", logEncoder)
	}
	var err error
	if opts.metrics, err = observability.ParseMetricsExporterKind(metrics); err != nil {
		return nil, err
	}
	return opts, nil
}

type banner struct{}

func (banner) JSON() string {
	return `{"app":"` + appName + `"}`
}

func (banner) PlainText() string {
	return appName + ": red-black tree invariant checker"
}

// newLogger flushes the buffered stdout on stop. Its hook is appended
// first, so it runs after the other stop hooks.
func newLogger(lc fx.Lifecycle, opts *options) xlog.XLogger {
	logger := xlog.NewXLogger(
		xlog.WithXLoggerStdOutWriter(),
		xlog.WithXLoggerEncoder(opts.logEncoder),
		xlog.WithXLoggerLevel(xlog.ParseLogLevel(opts.logLevel)),
		xlog.WithXLoggerContextFields(workload.ContextKeyScenario, workload.ContextKeyRunID),
	)
	logger.Banner(banner{})
	lc.Append(fx.StopHook(func() {
		// Syncing a terminal or a pipe reports EINVAL.
		_ = logger.Sync()
	}))
	return logger
}

func newMetrics(lc fx.Lifecycle, opts *options) (observability.ShutdownFunc, error) {
	shutdown, err := observability.InitMetricsExporter(observability.MetricsExporterConfig{
		Kind: opts.metrics,
		Addr: opts.metricsAddr,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(shutdown))
	return shutdown, nil
}

func newRunner(lc fx.Lifecycle, opts *options, logger xlog.XLogger) (*workload.Runner, error) {
	runner, err := workload.NewRunner(workload.RunnerConfig{
		Workers: opts.workers,
		DumpDir: opts.dumpDir,
		Scenario: workload.Config{
			Max:              opts.max,
			Seed:             opts.seed,
			RemoveBorrowSucc: opts.rmSucc,
			Stats:            opts.metrics != observability.NoneMetricsExporter,
		},
	}, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(runner.Release))
	return runner, nil
}

// runSuite starts the scenarios on start and shuts the app down with
// exit code 1 if any of them failed.
func runSuite(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	opts *options,
	logger xlog.XLogger,
	runner *workload.Runner,
	_ observability.ShutdownFunc,
) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if opts.metrics != observability.NoneMetricsExporter {
				observability.InitAppStats(ctx, appName, nil)
			}
			logger.Info("suite started",
				zap.Int("max", opts.max),
				zap.Uint64("seed", opts.seed),
				zap.Bool("rmSucc", opts.rmSucc),
			)
			go func() {
				defer close(done)
				start := time.Now()
				report := runner.Run(ctx, workload.Suite(opts.skipStress))
				fields := []zap.Field{
					zap.Int("scenarios", len(report.Results)),
					zap.Duration("elapsed", time.Since(start)),
				}
				if rss, err := observability.ProcessRSS(ctx); err == nil {
					fields = append(fields, zap.Uint64("rss", rss))
				}
				code := 0
				if err := report.Err(); err != nil {
					code = 1
					logger.Error(err, "suite failed", append(fields, zap.Strings("failed", report.Failed()))...)
				} else {
					logger.Info("suite passed", fields...)
				}
				if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Error(err, "shutdown")
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			return nil
		},
	})
}

func newApp(opts *options) *fx.App {
	return fx.New(
		fx.Supply(opts),
		fx.Provide(
			newLogger,
			newMetrics,
			newRunner,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(runSuite),
	)
}

// run returns the process exit code.
func run(opts *options) int {
	app := newApp(opts)
	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	sig := <-app.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if sig.ExitCode == 0 {
			return 1
		}
	}
	return sig.ExitCode
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	undo, _ := maxprocs.Set()
	code := run(opts)
	undo()
	os.Exit(code)
}
