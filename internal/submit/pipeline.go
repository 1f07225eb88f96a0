package submit

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync/atomic"
	"time"

	"qiner/internal/hwrng"
)

// Pipeline drains the shared queue once a second and streams framed packets
// to the peer over TCP (§4.E). A failed send leaves the queue untouched; the
// next tick retries against the (possibly grown) snapshot.
type Pipeline struct {
	addr      string
	queue     *Queue
	rng       hwrng.Source
	source    [32]byte
	destination [32]byte
	protocol  byte

	sentCount atomic.Uint64
}

// NewPipeline builds a pipeline targeting addr ("host:port"). source and
// destination are written verbatim into every packet's source_public_key and
// destination_public_key fields; the miner passes an all-zero source and the
// operator's own public key as destination.
func NewPipeline(addr string, queue *Queue, rng hwrng.Source, source, destination [32]byte, protocol byte) *Pipeline {
	return &Pipeline{
		addr:        addr,
		queue:       queue,
		rng:         rng,
		source:      source,
		destination: destination,
		protocol:    protocol,
	}
}

// SentCount returns the number of nonces successfully flushed to the wire.
func (p *Pipeline) SentCount() uint64 { return p.sentCount.Load() }

// Run ticks every second until ctx is cancelled, then makes one best-effort
// final flush before returning (§5 cancellation).
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.flush()
			return
		case <-ticker.C:
			p.flush()
		}
	}
}

func (p *Pipeline) flush() {
	n := p.queue.Len()
	if n == 0 {
		return
	}
	snapshot := p.queue.Snapshot(n)

	payload, err := p.framePackets(snapshot)
	if err != nil {
		log.Printf("submit: framing failed: %v", err)
		return
	}

	if err := p.send(payload); err != nil {
		log.Printf("submit: send to %s failed: %v", p.addr, err)
		return
	}

	p.queue.Drain(len(snapshot))
	p.sentCount.Add(uint64(len(snapshot)))
}

func (p *Pipeline) framePackets(nonces []Nonce) ([]byte, error) {
	var dejavu [3]byte // zero: this path originates solutions, it does not echo a peer's dejavu

	out := make([]byte, 0, len(nonces)*PacketSize)
	for _, n := range nonces {
		pkt, err := BuildPacket(p.protocol, dejavu, p.source, p.destination, n, p.rng)
		if err != nil {
			return nil, fmt.Errorf("build packet: %w", err)
		}
		wire := pkt.Bytes()
		out = append(out, wire[:]...)
	}
	return out, nil
}

func (p *Pipeline) send(payload []byte) error {
	if p.addr == "" {
		return fmt.Errorf("no peer address configured")
	}
	conn, err := net.DialTimeout("tcp", p.addr, 5*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write(payload)
	return err
}
