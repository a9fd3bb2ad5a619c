package workload

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/safeopen"
	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/lib/tree"
	"github.com/benz9527/xrbtree/xlog"
)

// Context fields attached to every scenario log.
const (
	ContextKeyScenario = "scenario"
	ContextKeyRunID    = "runId"
)

type RunnerConfig struct {
	// Workers is the ants pool size, GOMAXPROCS by default.
	Workers int
	// DumpDir receives <scenario>.txt with the final keys of every passed
	// scenario. Empty disables the dump.
	DumpDir  string
	Scenario Config
}

type Result struct {
	Scenario string
	RunID    int64
	Len      int64
	Elapsed  time.Duration
	Err      error
}

type Report struct {
	Results []Result
}

// Err combines the errors of the failed scenarios.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	var err error
	for _, res := range r.Results {
		if res.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", res.Scenario, res.Err))
		}
	}
	return err
}

func (r *Report) Failed() []string {
	if r == nil {
		return nil
	}
	return lo.FilterMap(r.Results, func(res Result, _ int) (string, bool) {
		return res.Scenario, res.Err != nil
	})
}

// Runner executes every scenario on its own tree in an ants pool. The
// trees are never shared between the workers.
type Runner struct {
	cfg    RunnerConfig
	logger xlog.XLogger
	pool   *ants.Pool
	runID  Gen
}

func NewRunner(cfg RunnerConfig, logger xlog.XLogger) (*Runner, error) {
	if logger == nil {
		return nil, infra.NewErrorStack("[workload] runner logger is nil")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if len(cfg.DumpDir) > 0 {
		if err := os.MkdirAll(cfg.DumpDir, 0o755); err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "[workload] create dump dir")
		}
	}
	pool, err := ants.NewPool(cfg.Workers, ants.WithLogger(xlog.NewAntsXLogger(logger)))
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[workload] create worker pool")
	}
	return &Runner{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		runID:  MonotonicGen(1),
	}, nil
}

// Run blocks until all scenarios are done. A scenario not started before
// ctx is done reports ctx.Err().
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) *Report {
	report := &Report{Results: make([]Result, len(scenarios))}
	wg := sync.WaitGroup{}
	for i, sc := range scenarios {
		report.Results[i].Scenario = sc.Name
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				report.Results[i].Err = err
				return
			}
			report.Results[i] = r.runOne(ctx, sc)
		})
		if err != nil {
			wg.Done()
			report.Results[i].Err = infra.WrapErrorStackWithMessage(err, "[workload] submit scenario")
		}
	}
	wg.Wait()
	return report
}

func (r *Runner) runOne(ctx context.Context, sc Scenario) (res Result) {
	res = Result{Scenario: sc.Name, RunID: r.runID()}
	ctx = context.WithValue(ctx, xlog.ContextKey(ContextKeyScenario), sc.Name)
	ctx = context.WithValue(ctx, xlog.ContextKey(ContextKeyRunID), res.RunID)
	r.logger.DebugContext(ctx, "scenario started")

	start := time.Now()
	var t tree.RBTree[int64]
	defer func() {
		if p := recover(); p != nil {
			res.Err = infra.WrapErrorStackWithMessage(ErrScenarioFailed, fmt.Sprintf("panic: %v", p))
		}
		if t != nil {
			res.Len = t.Len()
			t.Release()
		}
		res.Elapsed = time.Since(start)
		if res.Err != nil {
			r.logger.ErrorStackContext(ctx, res.Err, "scenario failed", zap.Duration("elapsed", res.Elapsed))
			return
		}
		r.logger.InfoContext(ctx, "scenario passed",
			zap.Int64("len", res.Len),
			zap.Duration("elapsed", res.Elapsed),
		)
	}()

	t, res.Err = sc.Run(ctx, r.cfg.Scenario)
	if res.Err == nil && t != nil && len(r.cfg.DumpDir) > 0 {
		res.Err = r.dump(sc.Name, t)
	}
	return res
}

func (r *Runner) dump(name string, t tree.RBTree[int64]) (err error) {
	f, err := safeopen.OpenFileBeneath(r.cfg.DumpDir, name+".txt", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "[workload] open dump file")
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return tree.Fprint[int64](f, t)
}

func (r *Runner) Release() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Release()
}
