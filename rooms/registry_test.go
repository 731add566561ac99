package rooms

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pyramid-eleven-server/config"
	"pyramid-eleven-server/game"
	"pyramid-eleven-server/roomerrors"
	"pyramid-eleven-server/ws"
)

func testRegistry(startDelayMS int) *Registry {
	cfg := config.Defaults()
	cfg.StartDelayMS = startDelayMS
	return NewRegistry(cfg)
}

func newClient(id string) *ws.Client {
	return &ws.Client{ID: id, Send: make(chan []byte, 64)}
}

// recvTyped reads a client's outbound channel until a message of the
// given type arrives.
func recvTyped(t *testing.T, c *ws.Client, want string) map[string]interface{} {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case raw := <-c.Send:
			var msg map[string]interface{}
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("unmarshaling relay message: %v", err)
			}
			if msg["type"] == want {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestGenerateCode(t *testing.T) {
	code := GenerateCode(6)
	if len(code) != 6 {
		t.Fatalf("code length = %d, want 6", len(code))
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			t.Errorf("code %q holds an out-of-alphabet rune %q", code, r)
		}
	}
}

func TestJoinCreatesWaitingRoom(t *testing.T) {
	reg := testRegistry(50)
	a := newClient("a")

	if err := reg.Join(a, "Alva", "ABC123"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if a.RoomCode != "ABC123" {
		t.Errorf("client room code = %q, want ABC123", a.RoomCode)
	}
	if a.Name != "Alva" {
		t.Errorf("client name = %q, want Alva", a.Name)
	}

	msg := recvTyped(t, a, "player_joined")
	members := msg["members"].([]interface{})
	if len(members) != 1 {
		t.Errorf("members after first join = %d, want 1", len(members))
	}
}

func TestJoinGeneratesCodeWhenEmpty(t *testing.T) {
	reg := testRegistry(50)
	a := newClient("a")
	if err := reg.Join(a, "Alva", ""); err != nil {
		t.Fatalf("join with empty code failed: %v", err)
	}
	if len(a.RoomCode) != reg.cfg.RoomCodeLength {
		t.Errorf("generated code %q has length %d, want %d", a.RoomCode, len(a.RoomCode), reg.cfg.RoomCodeLength)
	}
}

func TestSecondJoinSchedulesStart(t *testing.T) {
	reg := testRegistry(100)
	a, b := newClient("a"), newClient("b")
	reg.Join(a, "Alva", "ROOM01")
	reg.Join(b, "Bea", "ROOM01")

	msg := recvTyped(t, b, "player_joined")
	if members := msg["members"].([]interface{}); len(members) != 2 {
		t.Fatalf("members after second join = %d, want 2", len(members))
	}

	// The start signal must respect the grace delay.
	select {
	case raw := <-a.Send:
		var m map[string]interface{}
		json.Unmarshal(raw, &m)
		if m["type"] == "game_start" {
			t.Fatal("game_start relayed before the grace delay elapsed")
		}
	case <-time.After(30 * time.Millisecond):
	}

	start := recvTyped(t, a, "game_start")
	if members := start["members"].([]interface{}); len(members) != 2 {
		t.Errorf("game_start members = %d, want 2", len(members))
	}
	recvTyped(t, b, "game_start")
}

func TestThirdJoinRefused(t *testing.T) {
	reg := testRegistry(50)
	a, b, c := newClient("a"), newClient("b"), newClient("c")
	reg.Join(a, "Alva", "ROOM02")
	reg.Join(b, "Bea", "ROOM02")

	err := reg.Join(c, "Cleo", "ROOM02")
	if !errors.Is(err, roomerrors.ErrRoomFull) {
		t.Fatalf("third join error = %v, want ErrRoomFull", err)
	}
	if c.RoomCode != "" {
		t.Error("refused join must not bind the client to the room")
	}
	select {
	case raw := <-c.Send:
		t.Errorf("refused client received a relay: %s", raw)
	default:
	}
}

func TestLeaveRelaysMembership(t *testing.T) {
	reg := testRegistry(50)
	a, b := newClient("a"), newClient("b")
	reg.Join(a, "Alva", "ROOM03")
	reg.Join(b, "Bea", "ROOM03")

	reg.Leave(a)
	if a.RoomCode != "" {
		t.Error("leave must clear the client's room code")
	}

	msg := recvTyped(t, b, "player_left")
	members := msg["members"].([]interface{})
	if len(members) != 1 {
		t.Fatalf("members after leave = %d, want 1", len(members))
	}
	m := members[0].(map[string]interface{})
	if m["id"] != "b" {
		t.Errorf("remaining member id = %v, want b", m["id"])
	}
}

func TestLeaveLastMemberDestroysRoom(t *testing.T) {
	reg := testRegistry(50)
	a := newClient("a")
	reg.Join(a, "Alva", "ROOM04")
	reg.Leave(a)

	reg.mu.Lock()
	_, exists := reg.rooms["ROOM04"]
	reg.mu.Unlock()
	if exists {
		t.Error("empty room was not destroyed")
	}
}

func TestLeaveWithoutRoomIsNoop(t *testing.T) {
	reg := testRegistry(50)
	reg.Leave(newClient("a")) // must not panic
}

func TestPushProgressRelaysToPeerOnly(t *testing.T) {
	reg := testRegistry(0)
	a, b := newClient("a"), newClient("b")
	reg.Join(a, "Alva", "ROOM05")
	reg.Join(b, "Bea", "ROOM05")

	p := game.Progress{Score: 40, RanksRemaining: 24, ComboStreak: 2}
	if err := reg.PushProgress(a, p); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	msg := recvTyped(t, b, "opponent_update")
	if msg["sourceId"] != "a" {
		t.Errorf("sourceId = %v, want a", msg["sourceId"])
	}
	if msg["name"] != "Alva" {
		t.Errorf("name = %v, want Alva", msg["name"])
	}
	progress := msg["progress"].(map[string]interface{})
	if progress["score"].(float64) != 40 {
		t.Errorf("relayed score = %v, want 40", progress["score"])
	}
	if progress["ranksRemaining"].(float64) != 24 {
		t.Errorf("relayed ranksRemaining = %v, want 24", progress["ranksRemaining"])
	}
}

func TestPushProgressNotInRoom(t *testing.T) {
	reg := testRegistry(0)
	err := reg.PushProgress(newClient("x"), game.Progress{})
	if !errors.Is(err, roomerrors.ErrNotInRoom) {
		t.Errorf("push without a room: err = %v, want ErrNotInRoom", err)
	}
}

func TestZeroRemainingDeclaresWinnerOnce(t *testing.T) {
	reg := testRegistry(0)
	ended := make(chan [2]int, 2)
	reg.OnMatchEnd = func(matchID, winnerID, winnerName, loserID, loserName string, winnerScore, loserScore int) {
		if winnerID != "a" || loserID != "b" {
			t.Errorf("match end ids = %s/%s, want a/b", winnerID, loserID)
		}
		if winnerName != "Alva" || loserName != "Bea" {
			t.Errorf("match end names = %s/%s, want Alva/Bea", winnerName, loserName)
		}
		ended <- [2]int{winnerScore, loserScore}
	}

	a, b := newClient("a"), newClient("b")
	reg.Join(a, "Alva", "ROOM06")
	reg.Join(b, "Bea", "ROOM06")

	reg.PushProgress(b, game.Progress{Score: 120, RanksRemaining: 16})
	reg.PushProgress(a, game.Progress{Score: 280, RanksRemaining: 0})

	for _, c := range []*ws.Client{a, b} {
		msg := recvTyped(t, c, "game_over")
		if msg["winnerId"] != "a" {
			t.Errorf("winnerId = %v, want a", msg["winnerId"])
		}
		if msg["winnerName"] != "Alva" {
			t.Errorf("winnerName = %v, want Alva", msg["winnerName"])
		}
	}

	select {
	case scores := <-ended:
		if scores != [2]int{280, 120} {
			t.Errorf("recorded scores = %v, want [280 120]", scores)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnMatchEnd was not invoked")
	}

	// A second terminal report must not redeclare.
	reg.PushProgress(b, game.Progress{Score: 200, RanksRemaining: 0})
	select {
	case scores := <-ended:
		t.Errorf("second winner declared with scores %v", scores)
	case <-time.After(50 * time.Millisecond):
	}
}
