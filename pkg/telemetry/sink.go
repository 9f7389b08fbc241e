// Package telemetry is the optional observability collaborator a Core
// reports frame events to (SPEC_FULL.md §4.10): Redis pub/sub for other
// processes on the gateway, Prometheus counters/gauges for scraping.
package telemetry

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	busredis "github.com/robus-bus/robus/pkg/redis"
	"github.com/robus-bus/robus/pkg/robus"
)

// Redis channel and hash key names, following the teacher's
// pkg/service/constants.go convention of naming wire-facing Redis keys as
// package constants.
const (
	ChannelFrames  = "robus:frames"
	ChannelDropped = "robus:dropped"

	KeyBusStats       = "robus:stats"
	FieldFramesTotal  = "frames_total"
	FieldDroppedTotal = "dropped_total"
)

// Sink wraps pkg/redis.Client plus a small set of Prometheus metrics. It
// implements robus.Telemetry.
type Sink struct {
	redis *busredis.Client

	dispatched *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	txLockHeld prometheus.Gauge

	framesSeen  int
	droppedSeen int
}

// NewSink connects to addr and registers its metrics with reg. Passing a
// nil reg skips Prometheus registration (useful in tests that construct
// many Sinks and would otherwise collide on the default registry).
func NewSink(addr, password string, db int, reg prometheus.Registerer) (*Sink, error) {
	client, err := busredis.New(addr, password, db)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	s := &Sink{
		redis: client,
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "robus",
			Name:      "frames_dispatched_total",
			Help:      "Frames successfully decoded and dispatched to local modules, by target mode.",
		}, []string{"target_mode"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "robus",
			Name:      "frames_dropped_total",
			Help:      "Frames dropped by the receive accumulator, by reason.",
		}, []string{"reason"}),
		txLockHeld: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "robus",
			Name:      "tx_lock_held",
			Help:      "1 while this node's TX-lock is held, 0 otherwise.",
		}),
	}

	if reg != nil {
		reg.MustRegister(s.dispatched, s.dropped, s.txLockHeld)
	}
	return s, nil
}

// FrameDispatched records a successfully dispatched frame.
func (s *Sink) FrameDispatched(msg robus.Message) {
	s.dispatched.WithLabelValues(msg.Header.TargetMode.String()).Inc()
	s.framesSeen++
	s.redis.WriteInt(KeyBusStats, FieldFramesTotal, s.framesSeen)
	s.redis.Publish(ChannelFrames, fmt.Sprintf("%s:%d:%d", msg.Header.TargetMode, msg.Header.Target, msg.Header.Command))
}

// FrameDropped records a frame the accumulator could not validate. Only
// the error kind (the text before the first ": ") is used as a metric
// label, to keep cardinality bounded; the full reason still goes to the
// Redis channel for debugging.
func (s *Sink) FrameDropped(reason string) {
	s.dropped.WithLabelValues(dropReasonKind(reason)).Inc()
	s.droppedSeen++
	s.redis.WriteInt(KeyBusStats, FieldDroppedTotal, s.droppedSeen)
	s.redis.Publish(ChannelDropped, reason)
}

// dropReasonKind extracts the low-cardinality prefix of a FramingError's
// Error() string (its Kind.String(), per pkg/robus/errors.go) for use as a
// Prometheus label, discarding the free-form detail after ": ".
func dropReasonKind(reason string) string {
	if i := strings.Index(reason, ": "); i >= 0 {
		return reason[:i]
	}
	return reason
}

// TxLockHeld tracks whether this node currently owns the bus.
func (s *Sink) TxLockHeld(held bool) {
	if held {
		s.txLockHeld.Set(1)
	} else {
		s.txLockHeld.Set(0)
	}
}

// Close closes the underlying Redis connection.
func (s *Sink) Close() error {
	return s.redis.Close()
}
