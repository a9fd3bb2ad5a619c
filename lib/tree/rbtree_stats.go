package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xrbtree/rbtree"

	statsResultOK           = "ok"
	statsResultDuplicated   = "duplicated"
	statsResultNotFound     = "not_found"
	statsResultAllocFailed  = "alloc_failed"
	statsResultInvalidState = "invariant_violated"
)

var (
	leftRotateAttrs  = metric.WithAttributeSet(attribute.NewSet(attribute.String("dir", Left.String())))
	rightRotateAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("dir", Right.String())))
)

// rbTreeStats records the tree operations into the global otel meter
// provider. All methods are no-op on a nil receiver.
type rbTreeStats struct {
	insertCount    metric.Int64Counter
	removeCount    metric.Int64Counter
	rotationCount  metric.Int64Counter
	rebalanceCount metric.Int64Counter
	nodeCount      metric.Int64UpDownCounter
}

func (stats *rbTreeStats) RecordInsert(result string) {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", result)))
	if result == statsResultOK {
		stats.nodeCount.Add(context.Background(), 1)
	}
}

func (stats *rbTreeStats) RecordRemove(result string) {
	if stats == nil {
		return
	}
	stats.removeCount.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", result)))
	if result == statsResultOK {
		stats.nodeCount.Add(context.Background(), -1)
	}
}

func (stats *rbTreeStats) RecordRotation(dir RBDirection) {
	if stats == nil {
		return
	}
	switch dir {
	case Left:
		stats.rotationCount.Add(context.Background(), 1, leftRotateAttrs)
	case Right:
		stats.rotationCount.Add(context.Background(), 1, rightRotateAttrs)
	default:
	}
}

func (stats *rbTreeStats) RecordRebalance(c fmt.Stringer) {
	if stats == nil {
		return
	}
	stats.rebalanceCount.Add(context.Background(), 1, metric.WithAttributes(attribute.String("case", c.String())))
}

func (stats *rbTreeStats) RecordRelease(count int64) {
	if stats == nil || count <= 0 {
		return
	}
	stats.nodeCount.Add(context.Background(), -count)
}

func newRBTreeStats(name string) *rbTreeStats {
	meterName := RBTreeStatsName
	if len(name) > 0 {
		meterName = fmt.Sprintf("%s/%s", RBTreeStatsName, name)
	}
	meter := otel.Meter(meterName)
	return &rbTreeStats{
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.insert.count",
			metric.WithDescription("The number of insert requests by result."),
		)),
		removeCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.remove.count",
			metric.WithDescription("The number of remove requests by result."),
		)),
		rotationCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rotation.count",
			metric.WithDescription("The number of left and right rotations."),
		)),
		rebalanceCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rebalance.count",
			metric.WithDescription("The number of rebalance steps by fixup case."),
		)),
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"rbtree.node.count",
			metric.WithDescription("The number of nodes held by the tree."),
		)),
	}
}
