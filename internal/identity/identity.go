// Package identity converts between the 60-letter computor ID used in
// configuration and environment variables and the 4-limb public key used
// everywhere else in the miner.
package identity

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/codahale/thyrse/hazmat/kt128"
)

// IDLength is the size of a computor ID string: four 14-letter groups plus
// a 4-character checksum.
const IDLength = 60

const groupLen = 14

// PublicKey is the 256-bit computor identity as 4 little-endian 64-bit limbs.
type PublicKey [4]uint64

// Bytes packs the public key into its 32-byte little-endian wire form.
func (k PublicKey) Bytes() [32]byte {
	var out [32]byte
	for i, limb := range k {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], limb)
	}
	return out
}

// Decode parses a 60-byte computor ID into a PublicKey. The 4-byte checksum
// suffix (bytes 56..59) is ignored on input, matching the network's own
// decoder. Any byte outside 'A'..'Z' in the first 56 bytes is an error.
func Decode(id string) (PublicKey, error) {
	if len(id) != IDLength {
		return PublicKey{}, fmt.Errorf("identity: id must be %d bytes, got %d", IDLength, len(id))
	}

	var key PublicKey
	for i := 0; i < 4; i++ {
		var limb uint64
		for j := groupLen - 1; j >= 0; j-- {
			c := id[i*groupLen+j]
			if c < 'A' || c > 'Z' {
				return PublicKey{}, fmt.Errorf("identity: invalid character %q at position %d", c, i*groupLen+j)
			}
			limb = limb*26 + uint64(c-'A')
		}
		key[i] = limb
	}
	return key, nil
}

// Encode renders a PublicKey back into its 60-character display form,
// appending the network's 4-character checksum.
func Encode(key PublicKey) string {
	buf := make([]byte, IDLength)
	for i, limb := range key {
		for j := 0; j < groupLen; j++ {
			buf[i*groupLen+j] = byte('A' + limb%26)
			limb /= 26
		}
	}
	copy(buf[56:60], checksum(key))
	return string(buf)
}

// checksum derives the 4-character suffix from the low 18 bits of a
// KangarooTwelve hash of the 32-byte public key.
func checksum(key PublicKey) []byte {
	pub := key.Bytes()

	h := kt128.New()
	_, _ = h.Write(pub[:])
	var digest [32]byte
	if _, err := io.ReadFull(h, digest[:]); err != nil {
		panic(fmt.Sprintf("identity: kt128 squeeze failed: %v", err))
	}

	value := binary.LittleEndian.Uint32(digest[0:4]) & 0x3FFFF // low 18 bits

	out := make([]byte, 4)
	for j := 0; j < 4; j++ {
		out[j] = byte('A' + value%26)
		value /= 26
	}
	return out
}
