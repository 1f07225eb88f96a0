// Package worker runs the CPU-bound nonce search loop: one goroutine per
// configured thread, each pinned to its own OS thread, driving the puzzle
// engine as fast as it can and handing accepted nonces off to the
// submission queue without ever blocking on it.
package worker

import (
	"context"
	"runtime"
	"sync/atomic"

	"qiner/internal/hwrng"
	"qiner/internal/identity"
	"qiner/internal/puzzle"
	"qiner/internal/submit"
)

// Pool owns the live search threads and the counters telemetry reads.
type Pool struct {
	target    puzzle.MiningTarget
	publicKey identity.PublicKey
	threshold int
	numWorkers int
	queue     *submit.Queue
	rngSource hwrng.Source

	scoreCount atomic.Uint64
	iterCount  atomic.Uint64
}

// New builds a pool. It does not start any goroutines; call Run for that.
func New(target puzzle.MiningTarget, publicKey identity.PublicKey, threshold, numWorkers int, queue *submit.Queue, rng hwrng.Source) *Pool {
	return &Pool{
		target:     target,
		publicKey:  publicKey,
		threshold:  threshold,
		numWorkers: numWorkers,
		queue:      queue,
		rngSource:  rng,
	}
}

// ScoreCount returns the number of attempts that met the solution threshold.
func (p *Pool) ScoreCount() uint64 { return p.scoreCount.Load() }

// IterCount returns the total number of attempts made across all workers.
func (p *Pool) IterCount() uint64 { return p.iterCount.Load() }

// Run spawns numWorkers search loops and blocks until ctx is cancelled. With
// zero workers it spawns nothing and just waits for ctx; iter_count and
// score_count simply never move (§8 property 10).
func (p *Pool) Run(ctx context.Context) {
	if p.numWorkers == 0 {
		<-ctx.Done()
		return
	}

	done := make(chan struct{})
	for i := 0; i < p.numWorkers; i++ {
		go func() {
			p.loop(ctx)
			done <- struct{}{}
		}()
	}
	for i := 0; i < p.numWorkers; i++ {
		<-done
	}
}

// loop is one worker's lifetime. It pins to an OS thread for the same reason
// the teacher's device-driver goroutines do: predictable scheduling for a
// tight, allocation-free hot loop, with no cooperative yielding expected
// from the Go scheduler inside it.
func (p *Pool) loop(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	scratch := puzzle.NewScratch()
	pub := p.publicKey.Bytes()
	var pending []submit.Nonce

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		limbs := hwrng.FillNonce(p.rngSource)
		var nonce [32]byte
		for i, limb := range limbs {
			nonce[i*8+0] = byte(limb)
			nonce[i*8+1] = byte(limb >> 8)
			nonce[i*8+2] = byte(limb >> 16)
			nonce[i*8+3] = byte(limb >> 24)
			nonce[i*8+4] = byte(limb >> 32)
			nonce[i*8+5] = byte(limb >> 40)
			nonce[i*8+6] = byte(limb >> 48)
			nonce[i*8+7] = byte(limb >> 56)
		}

		if _, accepted := puzzle.EvaluateAccept(p.target, pub, nonce, scratch, p.threshold); accepted {
			p.scoreCount.Add(1)
			pending = append(pending, submit.Nonce(nonce))
		}

		if len(pending) > 0 {
			if p.queue.TryPush(pending) {
				pending = pending[:0]
			}
		}

		p.iterCount.Add(1)
	}
}
