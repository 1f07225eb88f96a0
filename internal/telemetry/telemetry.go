// Package telemetry reports the miner's live counters once a second through
// one of three render targets, mirroring the teacher's resource-reporting
// idiom (plain log line by default, with optional gin/bubbletea surfaces for
// operators who want more than a log tail).
package telemetry

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	psutilcpu "github.com/shirou/gopsutil/v3/cpu"
	psutilmem "github.com/shirou/gopsutil/v3/mem"
)

// Counters is the minimal view a Reporter needs into the running miner.
type Counters interface {
	ScoreCount() uint64
	IterCount() uint64
	SentCount() uint64
}

// Snapshot is the data shared by every render target.
type Snapshot struct {
	ScoreCount  uint64  `json:"score_count"`
	SentCount   uint64  `json:"sent_count"`
	IterRate    uint64  `json:"iter_rate"`
	CPUPercent  float64 `json:"cpu_percent"`
	MemPercent  float64 `json:"mem_percent"`
}

// Reporter samples Counters every second and renders the result through one
// of "log", "http", or "tui".
type Reporter struct {
	mode     string
	httpAddr string
	counters Counters

	prevIter uint64
}

// NewReporter builds a reporter. mode is one of "log" (default), "http", or
// "tui"; an unrecognised mode falls back to "log".
func NewReporter(mode, httpAddr string, counters Counters) *Reporter {
	return &Reporter{mode: mode, httpAddr: httpAddr, counters: counters}
}

// Run blocks until ctx is cancelled, driving the selected render target.
func (r *Reporter) Run(ctx context.Context) {
	switch r.mode {
	case "http":
		r.runHTTP(ctx)
	case "tui":
		r.runTUI(ctx)
	default:
		r.runLog(ctx)
	}
}

// Tick samples the current counters and host load into a Snapshot.
func (r *Reporter) Tick() Snapshot {
	iter := r.counters.IterCount()
	rate := iter - r.prevIter
	r.prevIter = iter

	var cpuPct, memPct float64
	if samples, err := psutilcpu.Percent(0, false); err == nil && len(samples) > 0 {
		cpuPct = samples[0]
	}
	if mem, err := psutilmem.VirtualMemory(); err == nil {
		memPct = mem.UsedPercent
	}

	return Snapshot{
		ScoreCount: r.counters.ScoreCount(),
		SentCount:  r.counters.SentCount(),
		IterRate:   rate,
		CPUPercent: cpuPct,
		MemPercent: memPct,
	}
}

func (r *Reporter) runLog(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := r.Tick()
			log.Printf("score=%d sent=%d rate=%d/s cpu=%.1f%% mem=%.1f%%",
				s.ScoreCount, s.SentCount, s.IterRate, s.CPUPercent, s.MemPercent)
		}
	}
}

// runHTTP serves a single ambient status endpoint. This never participates
// in the wire protocol; it is process-local observability only.
func (r *Reporter) runHTTP(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, r.Tick())
	})

	server := &http.Server{Addr: r.httpAddr, Handler: engine}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("telemetry: http server exited: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}
