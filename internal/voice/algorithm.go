package voice

import "math"

// Algorithm is one of the 32 fixed six-operator FM topologies described
// in spec.md §4.3: a set of carrier operators and a modulation matrix
// giving the strength with which operator m modulates operator c.
type Algorithm struct {
	Carriers [6]bool
	Matrix   [6][6]float64 // Matrix[modulator][carrier]
}

// AlgorithmCount is the number of fixed topologies (spec.md §3:
// algorithm is an integer in [1,32]).
const AlgorithmCount = 32

// algoGroups partitions the six operators into cascades: group size g
// starting at operator index idx builds a serial chain where operator
// idx+g-1 modulates idx+g-2, ..., down to idx+1 modulating idx, and idx
// itself is the group's carrier. Each of the 32 entries below is a
// distinct partition of the six operators, giving topologies spanning
// one carrier (full six-chain) through six carriers (fully parallel,
// algorithm 25 — see spec.md §8 scenario S2, which calls out algorithm
// 25 as "all-carriers").
var algoGroups = [AlgorithmCount][]int{
	{6},
	{1, 5}, {2, 4}, {3, 3}, {4, 2}, {5, 1},
	{1, 1, 4}, {1, 2, 3}, {1, 3, 2}, {1, 4, 1},
	{2, 1, 3}, {2, 2, 2}, {2, 3, 1},
	{3, 1, 2}, {3, 2, 1}, {4, 1, 1},
	{1, 1, 1, 3}, {1, 1, 2, 2}, {1, 1, 3, 1}, {1, 2, 1, 2},
	{1, 2, 2, 1}, {1, 3, 1, 1}, {2, 1, 1, 2}, {2, 1, 2, 1},
	{1, 1, 1, 1, 1, 1}, // algorithm 25: all six operators are carriers
	{2, 2, 1, 1}, {3, 1, 1, 1},
	{1, 1, 1, 1, 2}, {1, 1, 1, 2, 1}, {1, 1, 2, 1, 1}, {1, 2, 1, 1, 1}, {2, 1, 1, 1, 1},
}

var algorithms [AlgorithmCount]Algorithm

func init() {
	for i, groups := range algoGroups {
		algorithms[i] = buildAlgorithm(groups)
	}
}

func buildAlgorithm(groups []int) Algorithm {
	var a Algorithm
	idx := 0
	for _, g := range groups {
		carrier := idx
		a.Carriers[carrier] = true
		for j := 1; j < g; j++ {
			modulator := idx + j
			target := idx + j - 1
			a.Matrix[modulator][target] = 1
		}
		idx += g
	}
	return a
}

// AlgorithmAt returns algorithm n, clamped into [1, AlgorithmCount]
// (1-based, matching the patch field's documented range).
func AlgorithmAt(n int) Algorithm {
	return algorithms[clampInt(n, 1, AlgorithmCount)-1]
}

// Mix implements spec.md §4.3's per-sample router: given the raw
// (pre-level) sine sample and total level of every operator, plus the
// feedback depth (0..7) applied as self-modulation of operator 0, it
// returns the final, carrier-normalized voice output.
func (a Algorithm) Mix(sine, level [6]float64, feedback int) float64 {
	var p [6]float64
	for i := 0; i < 6; i++ {
		p[i] = sine[i] * level[i]
	}
	if feedback > 0 {
		p[0] = math.Sin(2*math.Pi*p[0] + p[0]*float64(feedback)/7.0*0.1)
	}
	// Descending order: a modulator's target index is always lower than
	// its own index (buildAlgorithm only ever points idx+j at idx+j-1),
	// so walking m from 5 down to 0 guarantees p[m] already carries
	// whatever modulation m itself received before it's used to drive
	// its own target further down the chain.
	for m := 5; m >= 0; m-- {
		for c := 0; c < 6; c++ {
			if a.Matrix[m][c] <= 0 {
				continue
			}
			// The leading 2*Pi term is a no-op under sin's periodicity;
			// kept to match the documented router contract verbatim.
			p[c] = math.Sin(2*math.Pi + p[m]*a.Matrix[m][c]*level[m]*2)
		}
	}
	var sum float64
	var n int
	for c := 0; c < 6; c++ {
		if a.Carriers[c] {
			sum += p[c]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / math.Sqrt(float64(n))
}
