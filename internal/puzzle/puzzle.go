// Package puzzle implements the deterministic neural-network-shaped puzzle
// that the miner evaluates on every attempted nonce. It is the hottest path
// in the whole program (over 99% of CPU time goes here), so the package
// trades flexibility for flat, reusable buffers: a Scratch is allocated once
// per worker and never grows across attempts.
package puzzle

import (
	"encoding/binary"

	"qiner/internal/keccakp"
)

// Bit-exact puzzle constants. These must match the live verifier; do not
// "simplify" them even though several are derivable from the others.
const (
	DataLength  = 1024
	InfoLength  = 512
	NumInputN   = 640
	NumOutputN  = 640
	MaxInputDur = 10
	MaxOutputDur = 10

	// WI, WO are the per-lane widths of the input and output synapse tensors.
	WI = DataLength + NumInputN + InfoLength // 2176
	WO = InfoLength + NumOutputN + DataLength // 2176

	// RI, RO are the number of neurons updated per tick in each stage.
	RI = NumInputN + InfoLength // 1152
	RO = NumOutputN + DataLength // 1664

	lengthsCount = MaxInputDur*RI + MaxOutputDur*RO

	inputSynapseBytes  = RI * WI
	outputSynapseBytes = RO * WO
	lengthsBytes       = lengthsCount * 2

	// SynapsesSize is the exact byte length of the keystream consumed to
	// build one attempt's synapse tensors (§4.C2).
	SynapsesSize = inputSynapseBytes + outputSynapseBytes + lengthsBytes
)

// MiningTarget is the fixed reference vector derived once from the network
// seed (§4.C1). It is read-only and safe to share across all workers.
type MiningTarget [DataLength]int32

// BuildTarget expands (seed, seed) through the keystream generator into
// DataLength*4 bytes and reinterprets them little-endian as int32 lanes.
func BuildTarget(seed [32]byte) MiningTarget {
	var raw [DataLength * 4]byte
	keccakp.Expand(seed, seed, raw[:])

	var target MiningTarget
	for i := 0; i < DataLength; i++ {
		target[i] = int32(binary.LittleEndian.Uint32(raw[i*4 : i*4+4]))
	}
	return target
}

// Scratch holds everything a single worker needs to evaluate one attempt.
// It is allocated once on the heap (NewScratch) and reused for the life of
// the worker; it must never be shared between goroutines.
type Scratch struct {
	keystream []byte // SynapsesSize bytes, reused as the raw expander output

	synInput  []int8  // RI*WI
	synOutput []int8  // RO*WO
	lengths   []uint16 // lengthsCount

	neuInput  []int32 // WI
	neuOutput []int32 // WO

	indices []int32 // reusable Fisher-Yates scratch, sized to max(RI, RO)
}

// NewScratch allocates a fresh per-worker scratchpad (several MiB) on the
// heap. Callers must not place a Scratch on the stack or clone it.
func NewScratch() *Scratch {
	maxCount := RI
	if RO > maxCount {
		maxCount = RO
	}
	return &Scratch{
		keystream: make([]byte, SynapsesSize),
		synInput:  make([]int8, inputSynapseBytes),
		synOutput: make([]int8, outputSynapseBytes),
		lengths:   make([]uint16, lengthsCount),
		neuInput:  make([]int32, WI),
		neuOutput: make([]int32, WO),
		indices:   make([]int32, maxCount),
	}
}

// buildSynapses expands (publicKey, nonce) into the scratch's keystream and
// unpacks it into ternary synapse cells and shuffle-draw lengths (§4.C2).
func (s *Scratch) buildSynapses(publicKey, nonce [32]byte) {
	keccakp.Expand(publicKey, nonce, s.keystream)

	off := 0
	for i := 0; i < inputSynapseBytes; i++ {
		s.synInput[i] = int8(int(s.keystream[off+i])%3) - 1
	}
	off += inputSynapseBytes

	for i := 0; i < outputSynapseBytes; i++ {
		s.synOutput[i] = int8(int(s.keystream[off+i])%3) - 1
	}
	off += outputSynapseBytes

	for i := 0; i < lengthsCount; i++ {
		s.lengths[i] = binary.LittleEndian.Uint16(s.keystream[off+i*2 : off+i*2+2])
	}

	for i := 0; i < RI; i++ {
		s.synInput[i*WI+DataLength+i] = 0
	}
	for i := 0; i < RO; i++ {
		s.synOutput[i*WO+InfoLength+i] = 0
	}
}

// initNeurons seeds the input-stage neurons from the mining target (§4.C3).
func (s *Scratch) initNeurons(target MiningTarget) {
	for i := 0; i < DataLength; i++ {
		s.neuInput[i] = target[i]
	}
	for i := DataLength; i < WI; i++ {
		s.neuInput[i] = 0
	}
}

// runStage performs the Fisher-Yates-driven sign-and-accumulate traversal
// shared by the input stage (§4.C4) and the output stage (§4.C5). k is the
// shared cursor into lengths; it must advance strictly left to right across
// both stages, never resetting between ticks.
func runStage(neurons []int32, synapses []int8, width, count, offsetBase, ticks int, lengths []uint16, k *int, indices []int32) {
	for t := 0; t < ticks; t++ {
		for i := 0; i < count; i++ {
			indices[i] = int32(i)
		}
		remaining := count
		for remaining > 0 {
			r := int(lengths[*k]) % remaining
			*k++

			n := int(indices[r])
			indices[r] = indices[remaining-1]
			remaining--

			base := n * width
			acc := neurons[offsetBase+n]
			for j := 0; j < width; j++ {
				sign := int32(1)
				if neurons[j] < 0 {
					sign = -1
				}
				acc += sign * int32(synapses[base+j])
			}
			neurons[offsetBase+n] = acc
		}
	}
}

// Evaluate runs one full attempt: synapse construction, neuron
// initialisation, the input and output stages, and scoring against target.
// It is total over any (publicKey, nonce) pair and never errors.
func Evaluate(target MiningTarget, publicKey, nonce [32]byte, s *Scratch) int {
	s.buildSynapses(publicKey, nonce)
	s.initNeurons(target)

	k := 0
	runStage(s.neuInput, s.synInput, WI, RI, DataLength, MaxInputDur, s.lengths, &k, s.indices)

	copy(s.neuOutput[0:InfoLength], s.neuInput[DataLength+NumInputN:DataLength+NumInputN+InfoLength])
	for i := InfoLength; i < WO; i++ {
		s.neuOutput[i] = 0
	}

	runStage(s.neuOutput, s.synOutput, WO, RO, InfoLength, MaxOutputDur, s.lengths, &k, s.indices)

	score := 0
	for i := 0; i < DataLength; i++ {
		targetPositive := target[i] >= 0
		outPositive := s.neuOutput[InfoLength+NumOutputN+i] >= 0
		if targetPositive == outPositive {
			score++
		}
	}
	return score
}

// EvaluateAccept runs Evaluate and reports whether the resulting score meets
// threshold.
func EvaluateAccept(target MiningTarget, publicKey, nonce [32]byte, s *Scratch, threshold int) (score int, accepted bool) {
	score = Evaluate(target, publicKey, nonce, s)
	return score, score >= threshold
}

// SynapseInputCells and SynapseOutputCells expose read-only views of the
// last-built synapse tensors, used only by tests asserting the range and
// self-loop invariants (§8.4, §8.5).
func (s *Scratch) SynapseInputCells() []int8  { return s.synInput }
func (s *Scratch) SynapseOutputCells() []int8 { return s.synOutput }
