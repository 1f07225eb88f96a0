// Package keccakp implements the bare Keccak-p[1600,12] permutation and the
// network's custom keystream expander built on top of it.
//
// Every sponge library reachable from this module (KT128/TurboSHAKE included)
// enforces standard padding and domain separation around the permutation.
// The expander below does neither: it overwrites the raw 200-byte state and
// squeezes directly, which is why the permutation is ported here instead of
// being called through one of those higher-level APIs.
package keccakp

import "encoding/binary"

const stateBytes = 200

// rounds is the reduced round count for Keccak-p[1600,12]: the last 12 of
// the 24 standard round constants, as used by TurboSHAKE and KangarooTwelve.
const rounds = 12

var roundConstants = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808a, 0x8000000080008000,
	0x000000000000808b, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008a, 0x0000000000000088, 0x0000000080008009, 0x000000008000000a,
	0x000000008000808b, 0x800000000000008b, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800a, 0x800000008000000a,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

// rotc[i] is the rotation offset for lane i in row-major (x + 5y) order.
var rotc = [25]uint{
	0, 1, 62, 28, 27,
	36, 44, 6, 55, 20,
	3, 10, 43, 25, 39,
	41, 45, 15, 21, 8,
	18, 2, 61, 56, 14,
}

func rotl64(x uint64, n uint) uint64 {
	return (x << n) | (x >> (64 - n))
}

// permute applies Keccak-p[1600,12] in place to a, a 25-lane (1600-bit) state
// in little-endian lane order.
func permute(a *[25]uint64) {
	first := len(roundConstants) - rounds
	var b [25]uint64
	var c [5]uint64
	var d [5]uint64

	for round := first; round < len(roundConstants); round++ {
		// theta
		for x := 0; x < 5; x++ {
			c[x] = a[x] ^ a[x+5] ^ a[x+10] ^ a[x+15] ^ a[x+20]
		}
		for x := 0; x < 5; x++ {
			d[x] = c[(x+4)%5] ^ rotl64(c[(x+1)%5], 1)
		}
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				a[x+5*y] ^= d[x]
			}
		}

		// rho + pi
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				nx := y
				ny := (2*x + 3*y) % 5
				b[nx+5*ny] = rotl64(a[x+5*y], rotc[x+5*y])
			}
		}

		// chi
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				a[x+5*y] = b[x+5*y] ^ ((^b[(x+1)%5+5*y]) & b[(x+2)%5+5*y])
			}
		}

		// iota
		a[0] ^= roundConstants[round]
	}
}

func bytesToState(state *[25]uint64, buf *[stateBytes]byte) {
	for i := range state {
		state[i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
	}
}

func stateToBytes(buf *[stateBytes]byte, state *[25]uint64) {
	for i := range state {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], state[i])
	}
}

// Expand seeds a 200-byte state with publicKey at [0,32), nonce at [32,64)
// and zeros elsewhere, then repeatedly applies Keccak-p[1600,12] and copies
// min(200, remaining) freshly-permuted bytes into out until it is filled.
//
// This is the puzzle's sole source of deterministic entropy: the mining
// target and every attempt's synapse tensors derive from it. The packet
// gamming key does not use this function; it is derived separately through
// the KangarooTwelve XOF.
func Expand(publicKey, nonce [32]byte, out []byte) {
	var buf [stateBytes]byte
	copy(buf[0:32], publicKey[:])
	copy(buf[32:64], nonce[:])

	var state [25]uint64
	bytesToState(&state, &buf)

	for len(out) > 0 {
		permute(&state)
		stateToBytes(&buf, &state)
		n := copy(out, buf[:])
		out = out[n:]
	}
}
