package game

// Progress is the per-participant summary that gets relayed between
// peers in a versus session. It is authoritative only for its owner;
// the relay never recomputes or validates it.
type Progress struct {
	Score          int `json:"score"`
	RanksRemaining int `json:"ranksRemaining"`
	BonusTokens    int `json:"bonusTokens"`
	ComboStreak    int `json:"comboStreak"`
}
