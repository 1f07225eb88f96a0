package submit

import (
	"io"

	"github.com/codahale/thyrse/hazmat/kt128"

	"qiner/internal/hwrng"
)

// PacketSize is the fixed wire length of one framed submission packet (§6).
const PacketSize = 3 + 1 + 3 + 1 + 32 + 32 + 32 + 32 + 64

// solutionPacketType is the network's message type byte for a solution
// submission (BROADCAST_MESSAGE).
const solutionPacketType = 1

// Packet is the 200-byte framed message sent for each accepted nonce.
type Packet struct {
	Dejavu                [3]byte
	ProtocolVersion       byte
	SourcePublicKey       [32]byte
	DestinationPublicKey  [32]byte
	GammingNonce          [32]byte
	SolutionNonce         [32]byte
	Signature             [64]byte
}

// Bytes serialises the packet into its 200-byte little-endian wire form.
func (p Packet) Bytes() [PacketSize]byte {
	var out [PacketSize]byte
	out[0] = byte(PacketSize)
	out[1] = byte(PacketSize >> 8)
	out[2] = byte(PacketSize >> 16)
	out[3] = p.ProtocolVersion
	copy(out[4:7], p.Dejavu[:])
	out[7] = solutionPacketType

	off := 8
	off += copy(out[off:], p.SourcePublicKey[:])
	off += copy(out[off:], p.DestinationPublicKey[:])
	off += copy(out[off:], p.GammingNonce[:])
	off += copy(out[off:], p.SolutionNonce[:])
	off += copy(out[off:], p.Signature[:])
	return out
}

// BuildPacket gammings rawNonce into a solution_nonce and frames the result
// for the wire (§6). The signature is 8 random 64-bit limbs, a placeholder
// in the same sense the reference miner's own submission path draws one:
// this miner never verifies inbound packets, but an outbound packet still
// carries a populated signature field.
func BuildPacket(protocolVersion byte, dejavu [3]byte, source, destination identity256, raw Nonce, rng hwrng.Source) (Packet, error) {
	gammingNonce, gammingKey, err := deriveGammingKey(rng)
	if err != nil {
		return Packet{}, err
	}

	gamma, err := kangaroo32(gammingKey[:])
	if err != nil {
		return Packet{}, err
	}

	var solutionNonce [32]byte
	for i := range solutionNonce {
		solutionNonce[i] = raw[i] ^ gamma[i]
	}

	return Packet{
		Dejavu:               dejavu,
		ProtocolVersion:      protocolVersion,
		SourcePublicKey:      source,
		DestinationPublicKey: destination,
		GammingNonce:         gammingNonce,
		SolutionNonce:        solutionNonce,
		Signature:            drawSignature(rng),
	}, nil
}

// drawSignature fills the 64-byte placeholder signature from 8 random
// 64-bit limbs, the same draw-and-retry pattern as deriveGammingKey.
func drawSignature(rng hwrng.Source) [64]byte {
	var limbs [8]uint64
	hwrng.FillWithRetry(rng, limbs[:], 8)

	var out [64]byte
	for i, limb := range limbs {
		for b := 0; b < 8; b++ {
			out[i*8+b] = byte(limb >> (8 * b))
		}
	}
	return out
}

// identity256 is a 32-byte public key in wire form. Defined locally to avoid
// a dependency cycle with internal/identity; callers pass identity.PublicKey.Bytes().
type identity256 = [32]byte

// deriveGammingKey draws a random gamming nonce and derives the gamming key,
// redrawing whenever the key's first byte is non-zero (§6).
func deriveGammingKey(rng hwrng.Source) (nonce [32]byte, key [32]byte, err error) {
	var sharedKey [32]byte // all-zero: no prior key exchange on this path

	for {
		limbs := hwrng.FillNonce(rng)
		for i, limb := range limbs {
			for b := 0; b < 8; b++ {
				nonce[i*8+b] = byte(limb >> (8 * b))
			}
		}

		input := make([]byte, 0, 64)
		input = append(input, sharedKey[:]...)
		input = append(input, nonce[:]...)

		key, err = kangaroo32(input)
		if err != nil {
			return nonce, key, err
		}
		if key[0] == 0 {
			return nonce, key, nil
		}
	}
}

// kangaroo32 squeezes 32 bytes of KangarooTwelve output from input.
func kangaroo32(input []byte) ([32]byte, error) {
	var out [32]byte
	h := kt128.New()
	if _, err := h.Write(input); err != nil {
		return out, err
	}
	if _, err := io.ReadFull(h, out[:]); err != nil {
		return out, err
	}
	return out, nil
}
