package ai

// Candidates enumerates the closed-form candidate set for the given
// target sum over the abstract rank universe: singles equal to the
// target, then unordered pairs (i, target-i), then unordered triples
// i <= j <= k, each group in increasing rank order. This is the
// discovery order that breaks ties between equally sized combinations.
//
// The search deliberately ignores the opponent's actual pyramid and
// reserve contents and evaluates this fixed universe instead.
func Candidates(target int) [][]int {
	var moves [][]int

	if target >= 1 {
		moves = append(moves, []int{target})
	}

	for i := 1; i <= target-i; i++ {
		j := target - i
		if j >= 1 {
			moves = append(moves, []int{i, j})
		}
	}

	for i := 1; i <= target-2; i++ {
		for j := i; j <= target-i-j; j++ {
			k := target - i - j
			if k >= j {
				moves = append(moves, []int{i, j, k})
			}
		}
	}

	return moves
}

// BestMove returns the preferred combination: the one with the most
// units, ties broken by discovery order. Returns nil when no candidate
// exists (target < 1).
func BestMove(target int) []int {
	var best []int
	for _, m := range Candidates(target) {
		if len(m) > len(best) {
			best = m
		}
	}
	return best
}
