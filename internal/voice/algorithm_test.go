package voice

import "testing"

func TestAlgorithmCarrierCountsSumToSix(t *testing.T) {
	for n := 1; n <= AlgorithmCount; n++ {
		a := AlgorithmAt(n)
		var carriers, modulators int
		for i := 0; i < 6; i++ {
			if a.Carriers[i] {
				carriers++
			}
		}
		for m := 0; m < 6; m++ {
			for c := 0; c < 6; c++ {
				if a.Matrix[m][c] > 0 {
					modulators++
				}
			}
		}
		if carriers < 1 || carriers > 6 {
			t.Errorf("algorithm %d has %d carriers, want 1..6", n, carriers)
		}
		if carriers+modulators != 6 {
			t.Errorf("algorithm %d: carriers(%d)+modulator-links(%d) != 6", n, carriers, modulators)
		}
	}
}

func TestAlgorithm25IsAllCarriers(t *testing.T) {
	a := AlgorithmAt(25)
	for i := 0; i < 6; i++ {
		if !a.Carriers[i] {
			t.Fatalf("algorithm 25 operator %d expected to be a carrier", i)
		}
	}
}

func TestAlgorithmAtClampsRange(t *testing.T) {
	if AlgorithmAt(0) != AlgorithmAt(1) {
		t.Error("AlgorithmAt(0) should clamp to 1")
	}
	if AlgorithmAt(99) != AlgorithmAt(AlgorithmCount) {
		t.Error("AlgorithmAt(99) should clamp to AlgorithmCount")
	}
}

func TestMixProducesSilenceWithZeroLevels(t *testing.T) {
	a := AlgorithmAt(25)
	var sine, level [6]float64
	for i := range sine {
		sine[i] = 0.7
	}
	if out := a.Mix(sine, level, 0); out != 0 {
		t.Errorf("expected silence with zero carrier levels, got %f", out)
	}
}

func TestMixLoneActiveCarrierProducesPositiveOutput(t *testing.T) {
	a := AlgorithmAt(25)
	var sine, level [6]float64
	sine[0] = 0.5
	level[0] = 1.0
	out := a.Mix(sine, level, 0)
	if out <= 0 {
		t.Errorf("expected positive output from lone active carrier, got %f", out)
	}
}

// TestMixPropagatesThroughThreeOrMoreOperatorChain guards against
// resolving modulators in the wrong order. Algorithm 7 ({1,1,4} in
// algoGroups) builds the chain 5 -> 4 -> 3 -> 2 (carrier). If
// modulators are visited ascending (0..5), m=3 updates the carrier
// using operator 3's raw pre-modulation value, because m=4 (which
// modulates operator 3) hasn't run yet — operator 5's contribution
// never reaches the carrier at all. Visited correctly, changing
// operator 5's level must change the final output.
func TestMixPropagatesThroughThreeOrMoreOperatorChain(t *testing.T) {
	a := AlgorithmAt(7)
	if !a.Carriers[2] || a.Matrix[3][2] <= 0 || a.Matrix[4][3] <= 0 || a.Matrix[5][4] <= 0 {
		t.Fatalf("expected algorithm 7 to build the chain 5->4->3->2, got carriers=%v matrix=%v", a.Carriers, a.Matrix)
	}

	base := [6]float64{0.4, 0.4, 0.6, 0.6, 0.6, 0.6}
	sineLow, sineHigh := base, base
	levelLow, levelHigh := base, base
	sineLow[5], levelLow[5] = 0.2, 0.2
	sineHigh[5], levelHigh[5] = 0.95, 0.95

	outLow := a.Mix(sineLow, levelLow, 0)
	outHigh := a.Mix(sineHigh, levelHigh, 0)
	if outLow == outHigh {
		t.Fatalf("expected operator 5's level to change the carrier's output through the 3+ operator chain, got identical outputs %f", outLow)
	}
}
