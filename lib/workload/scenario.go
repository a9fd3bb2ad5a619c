package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/benz9527/xrbtree/lib/tree"
)

var ErrScenarioFailed = errors.New("[workload] scenario failed")

const (
	DefaultMax = 1_000_000
	// smallN is the size of the fixed scenarios.
	smallN = 10
	// ctxCheckEvery is the number of keys driven between two ctx checks.
	ctxCheckEvery = 1 << 12
)

// Config is shared by all scenarios of a run.
type Config struct {
	// Max is the size of the many-values and stress scenarios.
	Max              int
	Seed             uint64
	RemoveBorrowSucc bool
	Stats            bool
}

func (cfg Config) max() int {
	if cfg.Max <= 0 {
		return DefaultMax
	}
	return cfg.Max
}

// Scenario builds its own tree, drives it and returns it for the dump.
// The returned tree may be nil if the scenario failed before building it.
// A done ctx stops the scenario within ctxCheckEvery keys and is reported
// as ctx.Err().
type Scenario struct {
	Name string
	Run  func(ctx context.Context, cfg Config) (tree.RBTree[int64], error)
}

// Suite is the fixed scenario list in execution order.
func Suite(skipStress bool) []Scenario {
	scenarios := []Scenario{
		{Name: "init", Run: initScenario},
		{Name: "ordered-insert", Run: orderedInsertScenario},
		{Name: "duplicate", Run: duplicateScenario},
		{Name: "search", Run: searchScenario},
		{Name: "ordered-delete", Run: orderedDeleteScenario},
		{Name: "delete-absent", Run: deleteAbsentScenario},
		{Name: "many-ordered", Run: manyOrderedScenario},
		{Name: "many-random", Run: manyRandomScenario},
		{Name: "sparse", Run: sparseScenario},
	}
	if !skipStress {
		scenarios = append(scenarios, Scenario{Name: "stress", Run: stressScenario})
	}
	return scenarios
}

func newTree(cfg Config, name string, prealloc int) tree.RBTree[int64] {
	opts := []tree.RBTreeOpt[int64]{
		tree.WithRBTreePrealloc[int64](prealloc),
	}
	if cfg.RemoveBorrowSucc {
		opts = append(opts, tree.WithRBTreeRemoveBorrowSucc[int64]())
	}
	if cfg.Stats {
		opts = append(opts, tree.WithRBTreeStats[int64](name))
	}
	return tree.NewRBTree[int64](opts...)
}

func interrupted(ctx context.Context, i int) error {
	if i%ctxCheckEvery != 0 {
		return nil
	}
	return ctx.Err()
}

func failf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrScenarioFailed}, args...)...)
}

func validate(t tree.RBTree[int64], stage string) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrScenarioFailed, stage, err)
	}
	return nil
}

func insertAll(ctx context.Context, t tree.RBTree[int64], keys []int64, allowDup bool) error {
	for i, key := range keys {
		if err := interrupted(ctx, i); err != nil {
			return err
		}
		err := t.Insert(key)
		if err == nil || (allowDup && errors.Is(err, tree.ErrRBTreeKeyDuplicated)) {
			continue
		}
		return fmt.Errorf("%w: insert %d: %w", ErrScenarioFailed, key, err)
	}
	return nil
}

func deleteAll(ctx context.Context, t tree.RBTree[int64], keys []int64, allowAbsent bool) error {
	for i, key := range keys {
		if err := interrupted(ctx, i); err != nil {
			return err
		}
		err := t.Delete(key)
		if err == nil || (allowAbsent && errors.Is(err, tree.ErrRBTreeKeyNotFound)) {
			continue
		}
		return fmt.Errorf("%w: delete %d: %w", ErrScenarioFailed, key, err)
	}
	return nil
}

func searchAll(ctx context.Context, t tree.RBTree[int64], keys []int64, present bool) error {
	for i, key := range keys {
		if err := interrupted(ctx, i); err != nil {
			return err
		}
		if t.Search(key) != present {
			return failf("search %d, expected present %v", key, present)
		}
	}
	return nil
}

func requireLen(t tree.RBTree[int64], expected int) error {
	if l := t.Len(); l != int64(expected) {
		return failf("len %d, expected %d", l, expected)
	}
	return nil
}

func seqKeys(start int64, n int) []int64 {
	return Take(SequentialGen(start), n)
}

func initScenario(ctx context.Context, cfg Config) (tree.RBTree[int64], error) {
	t := newTree(cfg, "init", 0)
	if err := ctx.Err(); err != nil {
		return t, err
	}
	if t.Root() != nil {
		return t, failf("new tree has a root")
	}
	if err := requireLen(t, 0); err != nil {
		return t, err
	}
	return t, validate(t, "init")
}

func orderedInsertScenario(ctx context.Context, cfg Config) (tree.RBTree[int64], error) {
	t := newTree(cfg, "ordered-insert", smallN)
	keys := seqKeys(0, smallN)
	if err := insertAll(ctx, t, keys, false); err != nil {
		return t, err
	}
	if got := slices.Collect(t.Keys()); !slices.Equal(keys, got) {
		return t, failf("traversal %v, expected %v", got, keys)
	}
	return t, validate(t, "insert")
}

func duplicateScenario(ctx context.Context, cfg Config) (tree.RBTree[int64], error) {
	t := newTree(cfg, "duplicate", smallN)
	keys := seqKeys(0, smallN)
	if err := insertAll(ctx, t, keys, false); err != nil {
		return t, err
	}
	for _, key := range keys {
		if err := t.Insert(key); !errors.Is(err, tree.ErrRBTreeKeyDuplicated) {
			return t, failf("duplicate %d not detected: %v", key, err)
		}
	}
	if err := requireLen(t, smallN); err != nil {
		return t, err
	}
	return t, validate(t, "duplicate")
}

func searchScenario(ctx context.Context, cfg Config) (tree.RBTree[int64], error) {
	t := newTree(cfg, "search", smallN)
	if err := insertAll(ctx, t, seqKeys(0, smallN), false); err != nil {
		return t, err
	}
	if err := searchAll(ctx, t, seqKeys(0, smallN), true); err != nil {
		return t, err
	}
	if err := searchAll(ctx, t, seqKeys(smallN, smallN), false); err != nil {
		return t, err
	}
	return t, validate(t, "search")
}

func orderedDeleteScenario(ctx context.Context, cfg Config) (tree.RBTree[int64], error) {
	t := newTree(cfg, "ordered-delete", smallN)
	keys := seqKeys(0, smallN)
	if err := insertAll(ctx, t, keys, false); err != nil {
		return t, err
	}
	if err := deleteAll(ctx, t, keys, false); err != nil {
		return t, err
	}
	if err := requireLen(t, 0); err != nil {
		return t, err
	}
	return t, validate(t, "delete")
}

func deleteAbsentScenario(ctx context.Context, cfg Config) (tree.RBTree[int64], error) {
	t := newTree(cfg, "delete-absent", smallN)
	if err := insertAll(ctx, t, seqKeys(0, smallN), false); err != nil {
		return t, err
	}
	for _, key := range seqKeys(smallN, smallN) {
		if err := t.Delete(key); !errors.Is(err, tree.ErrRBTreeKeyNotFound) {
			return t, failf("absent %d deleted: %v", key, err)
		}
	}
	if err := requireLen(t, smallN); err != nil {
		return t, err
	}
	return t, validate(t, "delete absent")
}

func manyOrderedScenario(ctx context.Context, cfg Config) (tree.RBTree[int64], error) {
	n := cfg.max()
	t := newTree(cfg, "many-ordered", n)
	keys := seqKeys(0, n)
	if err := insertAll(ctx, t, keys, false); err != nil {
		return t, err
	}
	if err := validate(t, "insert"); err != nil {
		return t, err
	}
	if err := searchAll(ctx, t, keys, true); err != nil {
		return t, err
	}
	if err := deleteAll(ctx, t, keys[:n/2], false); err != nil {
		return t, err
	}
	if err := requireLen(t, n-n/2); err != nil {
		return t, err
	}
	return t, validate(t, "delete")
}

func manyRandomScenario(ctx context.Context, cfg Config) (tree.RBTree[int64], error) {
	n := cfg.max()
	t := newTree(cfg, "many-random", n)
	keys := Take(RandomGen(cfg.Seed, int64(n)), n)
	if err := insertAll(ctx, t, keys, true); err != nil {
		return t, err
	}
	if err := validate(t, "insert"); err != nil {
		return t, err
	}
	if err := searchAll(ctx, t, keys, true); err != nil {
		return t, err
	}
	// A repeated key is absent the second time.
	if err := deleteAll(ctx, t, keys[:n/2], true); err != nil {
		return t, err
	}
	if err := searchAll(ctx, t, keys[:n/2], false); err != nil {
		return t, err
	}
	return t, validate(t, "delete")
}

// sparseScenario inserts every third key, misses in the gaps and drains
// the tree by RemoveMin in order.
func sparseScenario(ctx context.Context, cfg Config) (tree.RBTree[int64], error) {
	n := max(cfg.max()/10, smallN)
	t := newTree(cfg, "sparse", n)
	keys := Take(MonotonicGen(3), n)
	if err := insertAll(ctx, t, keys, false); err != nil {
		return t, err
	}
	for i, key := range keys {
		if err := interrupted(ctx, i); err != nil {
			return t, err
		}
		if t.Search(key+1) || t.Search(key+2) {
			return t, failf("gap next to %d found", key)
		}
	}
	if lo, ok := t.Min(); !ok || lo != keys[0] {
		return t, failf("min %d, expected %d", lo, keys[0])
	}
	if hi, ok := t.Max(); !ok || hi != keys[n-1] {
		return t, failf("max %d, expected %d", hi, keys[n-1])
	}
	if err := validate(t, "insert"); err != nil {
		return t, err
	}
	for i := 0; i < n/2; i++ {
		if err := interrupted(ctx, i); err != nil {
			return t, err
		}
		key, err := t.RemoveMin()
		if err != nil {
			return t, fmt.Errorf("%w: remove min: %w", ErrScenarioFailed, err)
		}
		if key != keys[i] {
			return t, failf("remove min %d, expected %d", key, keys[i])
		}
	}
	if err := requireLen(t, n-n/2); err != nil {
		return t, err
	}
	return t, validate(t, "remove min")
}

// stressScenario inserts random keys with duplicates, deletes a random
// half of the distinct keys and checks the membership of both halves.
func stressScenario(ctx context.Context, cfg Config) (tree.RBTree[int64], error) {
	n := cfg.max()
	t := newTree(cfg, "stress", n)
	gen := RandomGen(cfg.Seed+1, int64(n)*2)
	distinct := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		if err := interrupted(ctx, i); err != nil {
			return t, err
		}
		key := gen()
		switch err := t.Insert(key); {
		case err == nil:
			distinct = append(distinct, key)
		case errors.Is(err, tree.ErrRBTreeKeyDuplicated):
		default:
			return t, fmt.Errorf("%w: insert %d: %w", ErrScenarioFailed, key, err)
		}
	}
	if err := requireLen(t, len(distinct)); err != nil {
		return t, err
	}
	if err := validate(t, "insert"); err != nil {
		return t, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+2))
	rng.Shuffle(len(distinct), func(i, j int) {
		distinct[i], distinct[j] = distinct[j], distinct[i]
	})
	half := len(distinct) / 2
	if err := deleteAll(ctx, t, distinct[:half], false); err != nil {
		return t, err
	}
	if err := validate(t, "delete"); err != nil {
		return t, err
	}
	if err := searchAll(ctx, t, distinct[:half], false); err != nil {
		return t, err
	}
	if err := searchAll(ctx, t, distinct[half:], true); err != nil {
		return t, err
	}
	return t, requireLen(t, len(distinct)-half)
}
