package game

// Unit identifies one selectable thing: a pyramid slot or the single
// off-pile card. Units are compared by value, so a Selection can never
// hold the same unit twice.
type Unit struct {
	Row     int  `json:"row"`
	Col     int  `json:"col"`
	OffPile bool `json:"offPile,omitempty"`
}

// OffPileUnit is the unit value representing the off-pile card.
var OffPileUnit = Unit{Row: -1, Col: -1, OffPile: true}

// Selection is the transient set of currently chosen units. Insertion
// order is kept so the client can render picks in the order they were
// made.
type Selection struct {
	units []Unit
}

// Contains reports whether u is currently selected.
func (s *Selection) Contains(u Unit) bool {
	for _, v := range s.units {
		if v == u {
			return true
		}
	}
	return false
}

// Toggle adds u to the selection, or removes it when already present.
// Returns true when u is selected after the call.
func (s *Selection) Toggle(u Unit) bool {
	for i, v := range s.units {
		if v == u {
			s.units = append(s.units[:i], s.units[i+1:]...)
			return false
		}
	}
	s.units = append(s.units, u)
	return true
}

// Remove deletes u from the selection if present.
func (s *Selection) Remove(u Unit) {
	for i, v := range s.units {
		if v == u {
			s.units = append(s.units[:i], s.units[i+1:]...)
			return
		}
	}
}

// Units returns the selected units in insertion order.
func (s *Selection) Units() []Unit {
	return s.units
}

// Len returns the number of selected units.
func (s *Selection) Len() int {
	return len(s.units)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.units = s.units[:0]
}
