package ai

import (
	"reflect"
	"testing"
)

func TestCandidatesForEleven(t *testing.T) {
	moves := Candidates(11)

	if len(moves) == 0 {
		t.Fatal("no candidates for target 11")
	}
	if !reflect.DeepEqual(moves[0], []int{11}) {
		t.Errorf("first candidate = %v, want the single [11]", moves[0])
	}

	singles, pairs, triples := 0, 0, 0
	for _, m := range moves {
		sum := 0
		for _, r := range m {
			sum += r
			if r < 1 || r > 11 {
				t.Errorf("candidate %v holds an out-of-range rank", m)
			}
		}
		if sum != 11 {
			t.Errorf("candidate %v sums to %d, want 11", m, sum)
		}
		switch len(m) {
		case 1:
			singles++
		case 2:
			pairs++
		case 3:
			triples++
		default:
			t.Errorf("candidate %v has unexpected size", m)
		}
	}

	// 11 = one single, five unordered pairs (1+10 .. 5+6), ten unordered
	// triples (1+1+9 .. 3+4+4).
	if singles != 1 || pairs != 5 || triples != 10 {
		t.Errorf("candidate counts = %d/%d/%d, want 1/5/10", singles, pairs, triples)
	}
}

func TestCandidatesOrdering(t *testing.T) {
	moves := Candidates(11)
	// Pairs come right after the single, ascending by first rank.
	if !reflect.DeepEqual(moves[1], []int{1, 10}) {
		t.Errorf("first pair = %v, want [1 10]", moves[1])
	}
	if !reflect.DeepEqual(moves[5], []int{5, 6}) {
		t.Errorf("last pair = %v, want [5 6]", moves[5])
	}
	// Triples follow, ascending lexicographically.
	if !reflect.DeepEqual(moves[6], []int{1, 1, 9}) {
		t.Errorf("first triple = %v, want [1 1 9]", moves[6])
	}
}

func TestBestMovePrefersMostUnits(t *testing.T) {
	best := BestMove(11)
	if len(best) != 3 {
		t.Fatalf("best move size = %d, want 3 (most units wins)", len(best))
	}
	if !reflect.DeepEqual(best, []int{1, 1, 9}) {
		t.Errorf("best move = %v, want [1 1 9] (discovery order breaks ties)", best)
	}
}

func TestBestMoveSmallTargets(t *testing.T) {
	if got := BestMove(0); got != nil {
		t.Errorf("target 0: best = %v, want nil", got)
	}
	if got := BestMove(1); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("target 1: best = %v, want [1]", got)
	}
	if got := BestMove(2); !reflect.DeepEqual(got, []int{1, 1}) {
		t.Errorf("target 2: best = %v, want [1 1]", got)
	}
	if got := BestMove(3); !reflect.DeepEqual(got, []int{1, 1, 1}) {
		t.Errorf("target 3: best = %v, want [1 1 1]", got)
	}
}
