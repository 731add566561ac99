package game

import "math/rand"

// NewDeck returns a uniformly shuffled deck containing cycles copies of
// every rank 1..maxRank. The standard variant is 5 cycles of 1..11,
// 55 ranks total.
func NewDeck(cycles, maxRank int) []int {
	deck := make([]int, 0, cycles*maxRank)
	for i := 0; i < cycles; i++ {
		for rank := 1; rank <= maxRank; rank++ {
			deck = append(deck, rank)
		}
	}
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// Build deals a pyramid with the given number of rows from the front of
// the deck, row-major (row r holds r+1 slots), and returns the pyramid
// together with the undealt remainder as the reserve. The reserve keeps
// its post-shuffle order; cards are drawn from its front.
func Build(deck []int, rows int) (*Pyramid, []int) {
	p := &Pyramid{Rows: make([][]Slot, rows)}
	idx := 0
	for row := 0; row < rows; row++ {
		p.Rows[row] = make([]Slot, row+1)
		for col := 0; col <= row; col++ {
			p.Rows[row][col] = Slot{Row: row, Col: col, Rank: deck[idx]}
			idx++
		}
	}
	reserve := make([]int, len(deck)-idx)
	copy(reserve, deck[idx:])
	return p, reserve
}
