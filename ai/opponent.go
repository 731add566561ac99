// Package ai implements the heuristic opponent: a background actor that
// fires on a randomized cadence per difficulty tier and applies its
// chosen combination through the owning game's action channel.
package ai

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"pyramid-eleven-server/config"
	"pyramid-eleven-server/game"
)

// Opponent is bound to one Game for the game's lifetime. Each tick it
// searches the candidate set and sends the winning combination into the
// game loop; the loop applies the effects to the opponent's Progress and
// drops anything that arrives after game over.
type Opponent struct {
	game     *game.Game
	params   config.AIParams
	target   int
	stop     chan struct{}
	stopOnce sync.Once
}

// NewOpponent creates an opponent for the given game and difficulty tier.
func NewOpponent(g *game.Game, params config.AIParams) *Opponent {
	return &Opponent{
		game:   g,
		params: params,
		target: g.Config.TargetSum,
		stop:   make(chan struct{}),
	}
}

// Stop cancels the tick schedule. A tick already in flight is harmless:
// the game loop ignores actions once finished.
func (o *Opponent) Stop() {
	o.stopOnce.Do(func() { close(o.stop) })
}

// Run schedules ticks until stopped or the game ends. Should be run as a
// goroutine. Each delay is drawn uniformly from the tier's inclusive
// range; the opponent acts at most once per tick.
func (o *Opponent) Run() {
	for {
		select {
		case <-time.After(o.delay()):
			if !o.tick() {
				return
			}
		case <-o.stop:
			return
		case <-o.game.Done:
			return
		}
	}
}

func (o *Opponent) delay() time.Duration {
	minMS := o.params.DelayMinMS
	maxMS := o.params.DelayMaxMS
	delayMS := minMS
	if maxMS > minMS {
		delayMS = minMS + rand.Intn(maxMS-minMS+1)
	}
	return time.Duration(delayMS) * time.Millisecond
}

// tick searches for the best combination and hands it to the game loop.
// Units 0 tells the loop to fall back to a bonus-token removal if one is
// available, or do nothing. Returns false when the game is gone.
func (o *Opponent) tick() bool {
	move := BestMove(o.target)
	slog.Debug("opponent tick", "tag", "ai", "tier", o.params.Name, "units", len(move))
	select {
	case o.game.Actions <- game.Action{Type: game.ActionOpponentMove, Units: len(move)}:
		return true
	case <-o.game.Done:
		return false
	case <-o.stop:
		return false
	}
}
