package game

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pyramid-eleven-server/config"
	"pyramid-eleven-server/metrics"
	"pyramid-eleven-server/wsutil"
)

// Game modes.
const (
	ModeSolo   = "solo"
	ModeVsAI   = "vsai"
	ModeVersus = "versus"
)

// Terminal reasons, surfaced to the client verbatim.
const (
	ReasonWin              = "win"
	ReasonTimeUp           = "time-up"
	ReasonOpponentFinished = "opponent-finished"
	ReasonPeerWin          = "peer-reported-win"
)

// ActionType enumerates the kinds of actions a game can process.
type ActionType int

const (
	ActionSelectSlot ActionType = iota
	ActionSelectOffPile
	ActionResolve
	ActionUseBonus
	ActionDraw
	ActionOpponentMove // heuristic opponent tick result
	ActionClockTick    // internal: countdown clock fired
	ActionPeerResult   // room relayed a terminal winner
	ActionShutdown     // owning connection went away; stop silently
)

// Action is one unit of work sent into the game's action channel. All
// state mutation happens by processing these sequentially.
type Action struct {
	Type       ActionType
	Row, Col   int
	Units      int // opponent move: units in the chosen combination (0 = none found)
	WinnerID   string
	WinnerName string
}

// Game owns one Instance and serializes every mutation through Actions.
// The countdown clock and the heuristic opponent feed the same channel,
// so no two mutations ever overlap.
type Game struct {
	ID     string
	Mode   string
	Inst   *Instance
	Config *config.Config

	// SelfID is the owning connection's id; used to tell whether a
	// peer-reported terminal result names us as the winner.
	SelfID string

	// Opponent is the heuristic opponent's progress (vs-AI mode only).
	Opponent     Progress
	OpponentName string

	TimeRemaining int
	Finished      bool

	// Send is the owning client's outbound channel.
	Send chan []byte

	// OnProgress, when set, is invoked after every applied resolve or
	// bonus use with the full current Progress (the versus-mode push).
	OnProgress func(Progress)

	clockCancel chan struct{}

	Actions chan Action
	Done    chan struct{}
}

// New creates a game instance in the given mode, bound to one client.
func New(cfg *config.Config, mode, selfID string, send chan []byte) *Game {
	g := &Game{
		ID:            uuid.NewString(),
		Mode:          mode,
		Inst:          NewInstance(cfg),
		Config:        cfg,
		SelfID:        selfID,
		TimeRemaining: cfg.GameTimeSec,
		Send:          send,
		Actions:       make(chan Action, 16),
		Done:          make(chan struct{}),
	}
	if mode == ModeVsAI {
		g.Opponent = Progress{RanksRemaining: cfg.PyramidSlots()}
	}
	return g
}

// Run is the main game loop. It processes actions sequentially until the
// game finishes or the channel is closed. Should be run as a goroutine.
func (g *Game) Run() {
	defer close(g.Done)

	metrics.GamesStarted.WithLabelValues(g.Mode).Inc()
	g.broadcastState()
	g.startClock()

	for {
		action, ok := <-g.Actions
		if !ok || g.Finished {
			return
		}
		switch action.Type {
		case ActionSelectSlot:
			g.handleToggle(g.Inst.ToggleSlot(action.Row, action.Col))
		case ActionSelectOffPile:
			g.handleToggle(g.Inst.ToggleOffPile())
		case ActionResolve:
			g.handleResolve()
		case ActionUseBonus:
			g.handleUseBonus()
		case ActionDraw:
			g.Inst.Draw()
			g.broadcastState()
		case ActionOpponentMove:
			g.handleOpponentMove(action.Units)
		case ActionClockTick:
			g.handleClockTick()
		case ActionPeerResult:
			g.handlePeerResult(action.WinnerID, action.WinnerName)
		case ActionShutdown:
			g.cancelClock()
			g.Finished = true
			return
		}
		if g.Finished {
			return
		}
	}
}

// Stop asks the game loop to exit without a terminal broadcast. Safe to
// call whether or not the loop already returned.
func (g *Game) Stop() {
	select {
	case g.Actions <- Action{Type: ActionShutdown}:
	case <-g.Done:
	default:
	}
}

func (g *Game) handleToggle(res MoveResult) {
	if !res.Applied {
		g.sendRejected(res)
		return
	}
	g.broadcastState()
}

func (g *Game) handleResolve() {
	res := g.Inst.Resolve()
	if !res.Applied {
		metrics.MovesRejected.Inc()
		g.sendRejected(res)
		// A wrong sum resets the combo streak; re-render so the client sees it.
		if res.Reason == RejectWrongSum {
			g.broadcastState()
		}
		return
	}
	metrics.MovesResolved.Inc()
	if res.BonusGranted {
		g.sendJSON(BonusEarnedMsg{Type: "bonus_earned", BonusTokens: g.Inst.Progress.BonusTokens})
	}
	g.afterAppliedMove()
}

func (g *Game) handleUseBonus() {
	res := g.Inst.UseBonus()
	if !res.Applied {
		metrics.MovesRejected.Inc()
		g.sendRejected(res)
		return
	}
	metrics.MovesResolved.Inc()
	g.afterAppliedMove()
}

// afterAppliedMove runs the shared post-mutation sequence: re-render,
// push progress to the room (versus), and check the local win signal.
func (g *Game) afterAppliedMove() {
	g.broadcastState()
	if g.Mode == ModeVersus && g.OnProgress != nil {
		g.OnProgress(g.Inst.Progress)
	}
	if g.Inst.Completed() {
		g.endGame(ReasonWin, true, "")
	}
}

// handleOpponentMove applies one heuristic-opponent tick to the AI's own
// progress: a units-sized match, or a bonus-token removal when no
// combination was found, or nothing. Bookkeeping mirrors the player path.
func (g *Game) handleOpponentMove(units int) {
	opp := &g.Opponent
	switch {
	case units > 0:
		opp.Score += g.Config.MatchPoints * units
		opp.RanksRemaining -= units
		if opp.RanksRemaining < 0 {
			opp.RanksRemaining = 0
		}
		opp.ComboStreak++
		if opp.ComboStreak >= g.Config.ComboThreshold {
			opp.BonusTokens++
			opp.ComboStreak = 0
		}
	case opp.BonusTokens > 0:
		opp.BonusTokens--
		opp.RanksRemaining--
		if opp.RanksRemaining < 0 {
			opp.RanksRemaining = 0
		}
	default:
		return
	}

	g.sendJSON(AIUpdateMsg{Type: "opponent_update", OpponentName: g.OpponentName, Progress: *opp})
	if opp.RanksRemaining == 0 {
		g.endGame(ReasonOpponentFinished, false, g.OpponentName)
	}
}

func (g *Game) handleClockTick() {
	g.TimeRemaining--
	if g.TimeRemaining <= 0 {
		g.endGame(ReasonTimeUp, false, "")
		return
	}
	g.sendJSON(ClockMsg{Type: "clock", TimeRemainingSec: g.TimeRemaining})
}

// handlePeerResult ends the local game on a room-relayed terminal
// winner. If we won we already finished on our own resolve, so the loop
// only ever sees the losing side here.
func (g *Game) handlePeerResult(winnerID, winnerName string) {
	if winnerID == g.SelfID {
		g.endGame(ReasonWin, true, winnerName)
		return
	}
	g.endGame(ReasonPeerWin, false, winnerName)
}

func (g *Game) endGame(reason string, won bool, winnerName string) {
	g.cancelClock()
	g.Finished = true
	g.sendJSON(GameEndedMsg{
		Type:       "game_ended",
		Reason:     reason,
		Won:        won,
		FinalScore: g.Inst.Progress.Score,
		WinnerName: winnerName,
	})
	slog.Info("game ended", "tag", "game", "id", g.ID, "mode", g.Mode, "reason", reason, "score", g.Inst.Progress.Score)
}

// cancelClock stops the countdown goroutine. Safe if none is running.
func (g *Game) cancelClock() {
	if g.clockCancel != nil {
		close(g.clockCancel)
		g.clockCancel = nil
	}
}

// startClock starts the 1-second-period countdown task. Any previous
// clock is cancelled first, so a re-entrant start never leaks a
// duplicate timer.
func (g *Game) startClock() {
	if g.Config.GameTimeSec <= 0 {
		return
	}
	g.cancelClock()
	g.clockCancel = make(chan struct{})
	cancel := g.clockCancel
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case g.Actions <- Action{Type: ActionClockTick}:
				case <-g.Done:
					return
				}
			case <-cancel:
				return
			case <-g.Done:
				return
			}
		}
	}()
}

func (g *Game) sendRejected(res MoveResult) {
	g.sendJSON(MoveRejectedMsg{Type: "move_rejected", Reason: res.Reason.String(), Sum: res.Sum})
}

func (g *Game) broadcastState() {
	g.sendJSON(g.BuildState())
}

func (g *Game) sendJSON(v interface{}) {
	if g.Send == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshaling game message", "tag", "game", "err", err)
		return
	}
	wsutil.SafeSend(g.Send, data)
}
