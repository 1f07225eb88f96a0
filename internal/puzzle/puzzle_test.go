package puzzle

import "testing"

func TestBuildTargetDeterministic(t *testing.T) {
	seed := [32]byte{9, 8, 7}
	a := BuildTarget(seed)
	b := BuildTarget(seed)
	if a != b {
		t.Fatal("BuildTarget is not a pure function of seed")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	var seed, pub, nonce [32]byte
	target := BuildTarget(seed)
	s := NewScratch()

	first := Evaluate(target, pub, nonce, s)
	second := Evaluate(target, pub, nonce, s)
	if first != second {
		t.Fatalf("Evaluate not deterministic: %d vs %d", first, second)
	}
}

func TestScoreBounds(t *testing.T) {
	var seed [32]byte
	target := BuildTarget(seed)
	s := NewScratch()

	for trial := 0; trial < 8; trial++ {
		pub := [32]byte{byte(trial)}
		nonce := [32]byte{byte(trial * 7)}
		score := Evaluate(target, pub, nonce, s)
		if score < 0 || score > DataLength {
			t.Fatalf("score %d out of [0, %d]", score, DataLength)
		}
	}
}

func TestSynapseRangeAndSelfLoopInvariant(t *testing.T) {
	var seed, pub, nonce [32]byte
	target := BuildTarget(seed)
	s := NewScratch()
	Evaluate(target, pub, nonce, s)

	for _, cell := range s.SynapseInputCells() {
		if cell < -1 || cell > 1 {
			t.Fatalf("input synapse cell out of {-1,0,1}: %d", cell)
		}
	}
	for _, cell := range s.SynapseOutputCells() {
		if cell < -1 || cell > 1 {
			t.Fatalf("output synapse cell out of {-1,0,1}: %d", cell)
		}
	}

	in := s.SynapseInputCells()
	for i := 0; i < RI; i++ {
		if in[i*WI+DataLength+i] != 0 {
			t.Fatalf("input self-loop %d not zeroed", i)
		}
	}
	out := s.SynapseOutputCells()
	for i := 0; i < RO; i++ {
		if out[i*WO+InfoLength+i] != 0 {
			t.Fatalf("output self-loop %d not zeroed", i)
		}
	}
}

func TestThresholdBoundary(t *testing.T) {
	var seed, pub, nonce [32]byte
	target := BuildTarget(seed)
	s := NewScratch()
	score := Evaluate(target, pub, nonce, s)

	if _, accepted := EvaluateAccept(target, pub, nonce, s, score); !accepted {
		t.Fatalf("expected acceptance at threshold == score (%d)", score)
	}
	if _, accepted := EvaluateAccept(target, pub, nonce, s, score+1); accepted {
		t.Fatalf("expected rejection at threshold == score+1 (%d)", score+1)
	}
}

func TestThresholdExtremes(t *testing.T) {
	var seed, pub, nonce [32]byte
	target := BuildTarget(seed)
	s := NewScratch()

	if _, accepted := EvaluateAccept(target, pub, nonce, s, 0); !accepted {
		t.Fatal("threshold 0 must accept every nonce")
	}
	if _, accepted := EvaluateAccept(target, pub, nonce, s, DataLength+1); accepted {
		t.Fatal("threshold DataLength+1 must accept no nonce")
	}
}
