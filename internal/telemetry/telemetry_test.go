package telemetry

import (
	"context"
	"testing"
	"time"
)

type fakeCounters struct {
	score, iter, sent uint64
}

func (f *fakeCounters) ScoreCount() uint64 { return f.score }
func (f *fakeCounters) IterCount() uint64  { return f.iter }
func (f *fakeCounters) SentCount() uint64  { return f.sent }

func TestTickComputesRateFromDelta(t *testing.T) {
	counters := &fakeCounters{score: 2, sent: 1, iter: 100}
	r := NewReporter("log", "", counters)

	first := r.Tick()
	if first.IterRate != 100 {
		t.Fatalf("first IterRate = %d, want 100 (delta from zero)", first.IterRate)
	}

	counters.iter = 150
	second := r.Tick()
	if second.IterRate != 50 {
		t.Fatalf("second IterRate = %d, want 50", second.IterRate)
	}
	if second.ScoreCount != 2 || second.SentCount != 1 {
		t.Fatalf("snapshot counters mismatch: %+v", second)
	}
}

// TestRunLogWithZeroWorkers covers property 10: the log loop still runs with
// counters that never move and returns once ctx is cancelled. The 50 ms
// window is shorter than the one-second tick, so no snapshot is rendered.
func TestRunLogWithZeroWorkers(t *testing.T) {
	counters := &fakeCounters{}
	r := NewReporter("log", "", counters)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r.Run(ctx)

	if r.counters.IterCount() != 0 {
		t.Fatalf("iter_count moved with zero workers: %d", r.counters.IterCount())
	}
}

func TestUnknownModeFallsBackToLog(t *testing.T) {
	counters := &fakeCounters{}
	r := NewReporter("nonsense", "", counters)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	r.Run(ctx) // must not panic or block past ctx
}
