package game

// Slot is one position in the triangular layout. Removed is monotone:
// once a slot is removed it never comes back.
type Slot struct {
	Row     int
	Col     int
	Rank    int
	Removed bool
}

// Pyramid is the triangular card layout: row r holds r+1 slots.
type Pyramid struct {
	Rows [][]Slot
}

// Slot returns the slot at (row, col), or nil when out of range.
func (p *Pyramid) Slot(row, col int) *Slot {
	if row < 0 || row >= len(p.Rows) {
		return nil
	}
	if col < 0 || col >= len(p.Rows[row]) {
		return nil
	}
	return &p.Rows[row][col]
}

// Available reports whether the slot at (row, col) is currently
// selectable. The bottom row is available unless removed; any other slot
// needs both covering slots, (row+1, col) and (row+1, col+1), to be
// absent or already removed. Evaluated from the current removal flags
// only, so one removal can unlock slots transitively.
func (p *Pyramid) Available(row, col int) bool {
	s := p.Slot(row, col)
	if s == nil || s.Removed {
		return false
	}
	if row == len(p.Rows)-1 {
		return true
	}
	left := p.Slot(row+1, col)
	right := p.Slot(row+1, col+1)
	leftCovered := left != nil && !left.Removed
	rightCovered := right != nil && !right.Removed
	return !leftCovered && !rightCovered
}

// Availability recomputes the full availability map from scratch.
// Indexed like the pyramid itself: [row][col].
func (p *Pyramid) Availability() [][]bool {
	out := make([][]bool, len(p.Rows))
	for row := range p.Rows {
		out[row] = make([]bool, len(p.Rows[row]))
		for col := range p.Rows[row] {
			out[row][col] = p.Available(row, col)
		}
	}
	return out
}

// Remaining counts the slots not yet removed.
func (p *Pyramid) Remaining() int {
	n := 0
	for row := range p.Rows {
		for col := range p.Rows[row] {
			if !p.Rows[row][col].Removed {
				n++
			}
		}
	}
	return n
}
