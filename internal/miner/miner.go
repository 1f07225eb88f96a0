// Package miner wires the puzzle engine, worker pool, submission pipeline,
// and telemetry reporter into the single coordinator the entry point drives.
package miner

import (
	"context"
	"fmt"
	"sync"

	"qiner/internal/config"
	"qiner/internal/hwrng"
	"qiner/internal/puzzle"
	"qiner/internal/submit"
	"qiner/internal/telemetry"
	"qiner/internal/worker"
)

// Miner is a plain record of the running components; it exposes no
// behaviour beyond Run.
type Miner struct {
	cfg      *config.Config
	pool     *worker.Pool
	pipeline *submit.Pipeline
	reporter *telemetry.Reporter
}

// counters adapts a Pool and a Pipeline into the single Counters view
// telemetry needs.
type counters struct {
	pool     *worker.Pool
	pipeline *submit.Pipeline
}

func (c counters) ScoreCount() uint64 { return c.pool.ScoreCount() }
func (c counters) IterCount() uint64  { return c.pool.IterCount() }
func (c counters) SentCount() uint64  { return c.pipeline.SentCount() }

// New builds a Miner from configuration: it uses the public key that
// config.Load already decoded from the ID, constructs the mining target, and
// assembles the worker pool, submission pipeline, and telemetry reporter
// (§4.G).
func New(cfg *config.Config) (*Miner, error) {
	target := puzzle.BuildTarget(cfg.Seed)

	rngSource := hwrng.Detect()
	queue := submit.NewQueue()

	pool := worker.New(target, cfg.PublicKey, cfg.SolutionThreshold, cfg.NumWorkers, queue, rngSource)

	addr := fmt.Sprintf("%s:%d", cfg.ServerIP, cfg.ServerPort)
	var zeroSource [32]byte // source_public_key is always zero on this path (§6)
	pipeline := submit.NewPipeline(addr, queue, rngSource, zeroSource, cfg.PublicKey.Bytes(), cfg.ProtocolByte)

	reporter := telemetry.NewReporter(cfg.TelemetryMode, cfg.TelemetryHTTPAddr, counters{pool: pool, pipeline: pipeline})

	return &Miner{cfg: cfg, pool: pool, pipeline: pipeline, reporter: reporter}, nil
}

// Run starts the pool, pipeline, and reporter and blocks until ctx is
// cancelled, at which point all three are given the chance to wind down
// (§5: best-effort flush, no suspension inside worker loops).
func (m *Miner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() { defer wg.Done(); m.pool.Run(ctx) }()
	go func() { defer wg.Done(); m.pipeline.Run(ctx) }()
	go func() { defer wg.Done(); m.reporter.Run(ctx) }()

	wg.Wait()
}
