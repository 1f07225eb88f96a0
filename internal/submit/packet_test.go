package submit

import (
	"crypto/rand"
	"encoding/binary"
	"testing"
)

// testRNG is a deterministic software-backed Source for tests, avoiding any
// dependency on the hwrng package's CPU feature detection.
type testRNG struct{}

func (testRNG) Name() string { return "test" }

func (testRNG) FillU64(out []uint64) bool {
	buf := make([]byte, len(out)*8)
	if _, err := rand.Read(buf); err != nil {
		return false
	}
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
	}
	return true
}

func TestPacketBytesLength(t *testing.T) {
	var source, destination [32]byte
	var raw Nonce
	pkt, err := BuildPacket(220, [3]byte{1, 2, 3}, source, destination, raw, testRNG{})
	if err != nil {
		t.Fatalf("BuildPacket: %v", err)
	}
	wire := pkt.Bytes()
	if len(wire) != PacketSize {
		t.Fatalf("packet length = %d, want %d", len(wire), PacketSize)
	}
	if wire[3] != 220 {
		t.Fatalf("protocol byte = %d, want 220", wire[3])
	}
	if wire[7] != 1 {
		t.Fatalf("type byte = %d, want 1 (BROADCAST_MESSAGE)", wire[7])
	}
}

func TestBuildPacketSignatureIsPopulated(t *testing.T) {
	var source, destination [32]byte
	var raw Nonce
	pkt, err := BuildPacket(1, [3]byte{}, source, destination, raw, testRNG{})
	if err != nil {
		t.Fatalf("BuildPacket: %v", err)
	}
	if pkt.Signature == ([64]byte{}) {
		t.Fatal("signature must not be all-zero")
	}
}

func TestDeriveGammingKeyFirstByteAlwaysZero(t *testing.T) {
	for i := 0; i < 16; i++ {
		_, key, err := deriveGammingKey(testRNG{})
		if err != nil {
			t.Fatalf("deriveGammingKey: %v", err)
		}
		if key[0] != 0 {
			t.Fatalf("gamming key first byte = %d, want 0", key[0])
		}
	}
}

func TestBuildPacketGammingRoundTrip(t *testing.T) {
	var source, destination [32]byte
	raw := Nonce{1, 2, 3, 4, 5}
	pkt, err := BuildPacket(1, [3]byte{}, source, destination, raw, testRNG{})
	if err != nil {
		t.Fatalf("BuildPacket: %v", err)
	}

	gamma, err := kangaroo32(func() []byte {
		var sharedKey [32]byte
		input := append(append([]byte{}, sharedKey[:]...), pkt.GammingNonce[:]...)
		key, err := kangaroo32(input)
		if err != nil {
			t.Fatalf("kangaroo32 inner: %v", err)
		}
		return key[:]
	}())
	if err != nil {
		t.Fatalf("kangaroo32: %v", err)
	}

	var recovered Nonce
	for i := range recovered {
		recovered[i] = pkt.SolutionNonce[i] ^ gamma[i]
	}
	if recovered != raw {
		t.Fatalf("gamming round trip mismatch: got %v, want %v", recovered, raw)
	}
}
