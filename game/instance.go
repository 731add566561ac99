package game

import "pyramid-eleven-server/config"

// RejectReason classifies why a move attempt was refused. All of these
// are recoverable rule violations, not errors: the instance is left
// intact apart from the combo-streak reset on a wrong sum.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectEmptySelection
	RejectUnavailable
	RejectWrongSum
	RejectNotOneUnit
	RejectNoTokens
)

// String returns the protocol string for a RejectReason.
func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return ""
	case RejectEmptySelection:
		return "empty_selection"
	case RejectUnavailable:
		return "unavailable"
	case RejectWrongSum:
		return "wrong_sum"
	case RejectNotOneUnit:
		return "not_one_unit"
	case RejectNoTokens:
		return "no_tokens"
	default:
		return "unknown"
	}
}

// MoveResult reports the outcome of a resolve or bonus attempt.
type MoveResult struct {
	Applied      bool
	Reason       RejectReason
	Sum          int // observed selection sum on a wrong-sum rejection
	SlotsRemoved int // pyramid slots removed on success (off-pile excluded)
	BonusGranted bool
}

func reject(reason RejectReason) MoveResult {
	return MoveResult{Reason: reason}
}

// Instance holds one game's complete mutable state: pyramid, reserve,
// off-pile, selection and progress. It is the pure state-transition
// layer; all methods run synchronously and the caller (the Game actor)
// serializes access.
type Instance struct {
	cfg       *config.Config
	Pyramid   *Pyramid
	Reserve   []int
	OffPile   int // 0 = no off-pile card
	Selection Selection
	Progress  Progress
}

// NewInstance builds a fresh game: shuffled deck, dealt pyramid, reserve.
func NewInstance(cfg *config.Config) *Instance {
	deck := NewDeck(cfg.DeckCycles, cfg.MaxRank)
	return NewInstanceFromDeck(cfg, deck)
}

// NewInstanceFromDeck builds a game from a prepared deck. Used by tests
// that need a deterministic layout.
func NewInstanceFromDeck(cfg *config.Config, deck []int) *Instance {
	pyramid, reserve := Build(deck, cfg.PyramidRows)
	return &Instance{
		cfg:     cfg,
		Pyramid: pyramid,
		Reserve: reserve,
		Progress: Progress{
			RanksRemaining: cfg.PyramidSlots(),
		},
	}
}

// ToggleSlot toggles the slot at (row, col) in the selection.
// Selecting requires the slot to be currently available; deselecting is
// always allowed.
func (in *Instance) ToggleSlot(row, col int) MoveResult {
	u := Unit{Row: row, Col: col}
	if in.Selection.Contains(u) {
		in.Selection.Remove(u)
		return MoveResult{Applied: true}
	}
	if !in.Pyramid.Available(row, col) {
		return reject(RejectUnavailable)
	}
	in.Selection.Toggle(u)
	return MoveResult{Applied: true}
}

// ToggleOffPile toggles the off-pile card in the selection. Selecting
// requires a live off-pile card.
func (in *Instance) ToggleOffPile() MoveResult {
	if in.Selection.Contains(OffPileUnit) {
		in.Selection.Remove(OffPileUnit)
		return MoveResult{Applied: true}
	}
	if in.OffPile == 0 {
		return reject(RejectUnavailable)
	}
	in.Selection.Toggle(OffPileUnit)
	return MoveResult{Applied: true}
}

// unitRank returns the rank a selected unit contributes, and whether the
// unit is currently a legal part of a match (available slot, or the live
// off-pile card).
func (in *Instance) unitRank(u Unit) (int, bool) {
	if u.OffPile {
		if in.OffPile == 0 {
			return 0, false
		}
		return in.OffPile, true
	}
	if !in.Pyramid.Available(u.Row, u.Col) {
		return 0, false
	}
	return in.Pyramid.Slot(u.Row, u.Col).Rank, true
}

// SelectionSum returns the running sum of the selected units' ranks.
// Units that are no longer live (e.g. an off-pile card that was drawn
// over) contribute nothing.
func (in *Instance) SelectionSum() int {
	sum := 0
	for _, u := range in.Selection.Units() {
		if rank, ok := in.unitRank(u); ok {
			sum += rank
		}
	}
	return sum
}

// Resolve validates the current selection as a match and applies it.
// On success every selected slot is removed, an included off-pile card
// is consumed, the score grows by MatchPoints per unit and the combo
// streak advances (granting a bonus token and resetting at the
// threshold). A wrong sum is a recoverable rejection that resets the
// combo streak but leaves the selection membership intact.
func (in *Instance) Resolve() MoveResult {
	units := in.Selection.Units()
	if len(units) == 0 {
		return reject(RejectEmptySelection)
	}

	sum := 0
	for _, u := range units {
		rank, ok := in.unitRank(u)
		if !ok {
			return reject(RejectUnavailable)
		}
		sum += rank
	}

	if sum != in.cfg.TargetSum {
		in.Progress.ComboStreak = 0
		res := reject(RejectWrongSum)
		res.Sum = sum
		return res
	}

	slots := 0
	for _, u := range units {
		if u.OffPile {
			in.OffPile = 0
			continue
		}
		in.Pyramid.Slot(u.Row, u.Col).Removed = true
		slots++
	}

	in.Progress.Score += in.cfg.MatchPoints * len(units)
	in.Progress.RanksRemaining -= slots
	in.Progress.ComboStreak++
	granted := false
	if in.Progress.ComboStreak >= in.cfg.ComboThreshold {
		in.Progress.BonusTokens++
		in.Progress.ComboStreak = 0
		granted = true
	}
	in.Selection.Clear()

	return MoveResult{Applied: true, Sum: sum, SlotsRemoved: slots, BonusGranted: granted}
}

// UseBonus spends one bonus token to remove exactly one selected unit
// unconditionally (the sum check is bypassed). Rejected when the
// selection does not hold exactly one unit, when no tokens are left, or
// when the unit is no longer live.
func (in *Instance) UseBonus() MoveResult {
	if in.Selection.Len() != 1 {
		return reject(RejectNotOneUnit)
	}
	if in.Progress.BonusTokens == 0 {
		return reject(RejectNoTokens)
	}
	u := in.Selection.Units()[0]
	if _, ok := in.unitRank(u); !ok {
		return reject(RejectUnavailable)
	}

	slots := 0
	if u.OffPile {
		in.OffPile = 0
	} else {
		in.Pyramid.Slot(u.Row, u.Col).Removed = true
		slots = 1
		in.Progress.RanksRemaining--
	}
	in.Progress.BonusTokens--
	in.Selection.Clear()

	return MoveResult{Applied: true, SlotsRemoved: slots}
}

// Draw pops the next rank from the reserve into the off-pile holder,
// replacing any previous off-pile card (the old value is gone for good).
// A selected off-pile unit is deselected first so the selection never
// silently refers to a vanished rank. No-op when the reserve is empty.
func (in *Instance) Draw() bool {
	if len(in.Reserve) == 0 {
		return false
	}
	in.Selection.Remove(OffPileUnit)
	in.OffPile = in.Reserve[0]
	in.Reserve = in.Reserve[1:]
	return true
}

// Completed reports the local win condition.
func (in *Instance) Completed() bool {
	return in.Progress.RanksRemaining == 0
}
