package ai

import (
	"testing"
	"time"

	"pyramid-eleven-server/config"
	"pyramid-eleven-server/game"
)

func testGame() *game.Game {
	cfg := config.Defaults()
	cfg.GameTimeSec = 0
	return game.New(cfg, game.ModeVsAI, "self-id", nil)
}

func TestTickSendsBestMove(t *testing.T) {
	g := testGame()
	o := NewOpponent(g, config.AIParams{Name: "hard", DelayMinMS: 1, DelayMaxMS: 1})

	if !o.tick() {
		t.Fatal("tick reported the game gone")
	}
	select {
	case a := <-g.Actions:
		if a.Type != game.ActionOpponentMove {
			t.Errorf("action type = %v, want opponent move", a.Type)
		}
		if a.Units != 3 {
			t.Errorf("units = %d, want 3 (triples beat pairs and singles)", a.Units)
		}
	default:
		t.Fatal("tick sent nothing into the game's action channel")
	}
}

func TestRunStopsOnGameDone(t *testing.T) {
	g := testGame()
	o := NewOpponent(g, config.AIParams{Name: "hard", DelayMinMS: 1, DelayMaxMS: 2})

	exited := make(chan struct{})
	go func() {
		o.Run()
		close(exited)
	}()

	close(g.Done)
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("opponent kept running after the game ended")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	g := testGame()
	o := NewOpponent(g, config.AIParams{Name: "easy", DelayMinMS: 4000, DelayMaxMS: 7000})

	exited := make(chan struct{})
	go func() {
		o.Run()
		close(exited)
	}()

	o.Stop()
	o.Stop()
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("opponent did not honor Stop")
	}
}

func TestDelayWithinTierRange(t *testing.T) {
	g := testGame()
	o := NewOpponent(g, config.AIParams{Name: "medium", DelayMinMS: 2000, DelayMaxMS: 5000})
	for i := 0; i < 100; i++ {
		d := o.delay()
		if d < 2000*time.Millisecond || d > 5000*time.Millisecond {
			t.Fatalf("delay %v outside [2s, 5s]", d)
		}
	}
}
