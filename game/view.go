package game

// SlotView is the client-facing representation of one pyramid slot.
type SlotView struct {
	Row       int  `json:"row"`
	Col       int  `json:"col"`
	Rank      int  `json:"rank"`
	Removed   bool `json:"removed"`
	Available bool `json:"available"`
	Selected  bool `json:"selected"`
}

// StateMsg is the full re-render payload pushed to the owning client
// after every state transition.
type StateMsg struct {
	Type             string       `json:"type"`
	Mode             string       `json:"mode"`
	Pyramid          [][]SlotView `json:"pyramid"`
	OffPile          int          `json:"offPile"` // 0 = empty
	OffPileSelected  bool         `json:"offPileSelected"`
	ReserveCount     int          `json:"reserveCount"`
	SelectionSum     int          `json:"selectionSum"`
	SelectionValid   bool         `json:"selectionValid"`
	TargetSum        int          `json:"targetSum"`
	You              Progress     `json:"you"`
	Opponent         *Progress    `json:"opponent,omitempty"`
	OpponentName     string       `json:"opponentName,omitempty"`
	TimeRemainingSec int          `json:"timeRemainingSec"`
}

// ClockMsg is the once-per-second countdown push.
type ClockMsg struct {
	Type             string `json:"type"`
	TimeRemainingSec int    `json:"timeRemainingSec"`
}

// MoveRejectedMsg surfaces a recoverable rule violation to the client.
// Sum is only meaningful for the wrong_sum reason.
type MoveRejectedMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
	Sum    int    `json:"sum,omitempty"`
}

// BonusEarnedMsg announces a combo streak converting into a bonus token.
type BonusEarnedMsg struct {
	Type        string `json:"type"`
	BonusTokens int    `json:"bonusTokens"`
}

// AIUpdateMsg carries the heuristic opponent's progress after one of its
// ticks (vs-AI mode only; versus peers are relayed by the room instead).
type AIUpdateMsg struct {
	Type         string   `json:"type"`
	OpponentName string   `json:"opponentName"`
	Progress     Progress `json:"progress"`
}

// GameEndedMsg is the terminal outcome for the local game instance.
// Reason is one of win, time-up, opponent-finished, peer-reported-win.
type GameEndedMsg struct {
	Type       string `json:"type"`
	Reason     string `json:"reason"`
	Won        bool   `json:"won"`
	FinalScore int    `json:"finalScore"`
	WinnerName string `json:"winnerName,omitempty"`
}

// BuildState assembles the StateMsg for the instance's current state.
func (g *Game) BuildState() StateMsg {
	in := g.Inst
	availability := in.Pyramid.Availability()
	pyramid := make([][]SlotView, len(in.Pyramid.Rows))
	for row := range in.Pyramid.Rows {
		pyramid[row] = make([]SlotView, len(in.Pyramid.Rows[row]))
		for col := range in.Pyramid.Rows[row] {
			s := in.Pyramid.Rows[row][col]
			pyramid[row][col] = SlotView{
				Row:       s.Row,
				Col:       s.Col,
				Rank:      s.Rank,
				Removed:   s.Removed,
				Available: availability[row][col],
				Selected:  in.Selection.Contains(Unit{Row: s.Row, Col: s.Col}),
			}
		}
	}

	sum := in.SelectionSum()
	msg := StateMsg{
		Type:             "game_state",
		Mode:             g.Mode,
		Pyramid:          pyramid,
		OffPile:          in.OffPile,
		OffPileSelected:  in.Selection.Contains(OffPileUnit),
		ReserveCount:     len(in.Reserve),
		SelectionSum:     sum,
		SelectionValid:   in.Selection.Len() > 0 && sum == g.Config.TargetSum,
		TargetSum:        g.Config.TargetSum,
		You:              in.Progress,
		TimeRemainingSec: g.TimeRemaining,
	}
	if g.Mode == ModeVsAI {
		opp := g.Opponent
		msg.Opponent = &opp
		msg.OpponentName = g.OpponentName
	}
	return msg
}
