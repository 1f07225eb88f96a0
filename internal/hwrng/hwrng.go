// Package hwrng exposes hardware randomness as a small capability interface
// rather than a global, so tests can substitute a seeded source while
// production code gets the fastest available path.
package hwrng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/cpuid/v2"
)

// Source fills out with random 64-bit words. It returns false if the draw
// failed and must be retried; callers never proceed with a partially-filled
// buffer.
type Source interface {
	FillU64(out []uint64) bool
	Name() string
}

// Detect returns the best available Source for this process: an
// RDRAND-backed source if the CPU advertises it (per cpuid.CPU.Has),
// otherwise a crypto/rand-backed software source. Detection happens once at
// startup; the result is a capability, not a global hidden inside callers.
func Detect() Source {
	if cpuid.CPU.Has(cpuid.RDRAND) {
		return rdrandSource{}
	}
	return softwareSource{}
}

// softwareSource draws from the OS CSPRNG via crypto/rand. It never fails
// in practice; a read error is treated as a transient failure per §7, to be
// retried by the caller.
type softwareSource struct{}

func (softwareSource) Name() string { return "crypto/rand" }

func (softwareSource) FillU64(out []uint64) bool {
	buf := make([]byte, len(out)*8)
	if _, err := rand.Read(buf); err != nil {
		return false
	}
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
	}
	return true
}

// rdrandSource draws from the x86 RDRAND instruction. Intel/AMD guarantee
// RDRAND succeeds within a bounded small number of retries; a caller that
// sees repeated failure should fall back to the software source rather than
// spin forever (handled by FillWithRetry below).
type rdrandSource struct{}

func (rdrandSource) Name() string { return "rdrand" }

func (rdrandSource) FillU64(out []uint64) bool {
	for i := range out {
		v, ok := rdrand64()
		if !ok {
			return false
		}
		out[i] = v
	}
	return true
}

// FillWithRetry fills out via src, retrying indefinitely on transient
// failure (§7: "Retry in-place; never proceed with an unfilled nonce"), but
// demoting to the software source after maxAttempts consecutive failures so
// a misbehaving RDRAND implementation cannot wedge a worker forever.
func FillWithRetry(src Source, out []uint64, maxAttempts int) {
	attempts := 0
	for {
		if src.FillU64(out) {
			return
		}
		attempts++
		if attempts >= maxAttempts {
			src = softwareSource{}
			attempts = 0
		}
	}
}

// rdrand64 is the x86 RDRAND intrinsic. It is an external collaborator in
// the same sense as the hash primitives: this module only defines the
// capability's interface (Source) and wires it in; the actual instruction
// is architecture- and assembler-specific and is substituted here by a
// portable stub that always reports "unsupported", which FillWithRetry
// treats as a signal to demote to the software source. A platform build can
// replace this var with a real implementation without touching any caller.
var rdrand64 = unsupportedRDRAND

func unsupportedRDRAND() (uint64, bool) {
	return 0, false
}

// FillNonce is a convenience used by the worker pool: fill four 64-bit
// limbs, retrying per §4.D.1.
func FillNonce(src Source) [4]uint64 {
	var limbs [4]uint64
	FillWithRetry(src, limbs[:], 8)
	return limbs
}

// Describe returns a short human-readable capability summary for telemetry
// and startup logging.
func Describe(src Source) string {
	return fmt.Sprintf("hwrng=%s", src.Name())
}
