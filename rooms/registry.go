// Package rooms implements the session coordinator: an authority-less
// relay that groups two participants by room code, forwards each side's
// self-reported progress to the other, and declares a winner from a
// ranksRemaining==0 report. It never recomputes or validates progress.
package rooms

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"pyramid-eleven-server/config"
	"pyramid-eleven-server/game"
	"pyramid-eleven-server/metrics"
	"pyramid-eleven-server/roomerrors"
	"pyramid-eleven-server/ws"
	"pyramid-eleven-server/wsutil"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode returns a fresh random room code of length n.
func GenerateCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// participant is one room member and the last progress it reported.
type participant struct {
	client   *ws.Client
	progress game.Progress
}

// Room groups at most two participants under one code.
type Room struct {
	Code    string
	MatchID string
	members []*participant

	// started is set once the grace delay after the second join elapsed
	// and game_start was relayed.
	started bool

	// finished is set when a terminal game_over has been relayed; later
	// progress pushes cannot declare a second winner.
	finished bool
}

func (r *Room) memberList() []ws.Member {
	out := make([]ws.Member, len(r.members))
	for i, p := range r.members {
		out[i] = ws.Member{ID: p.client.ID, Name: p.client.Name}
	}
	return out
}

// Registry owns all rooms. Membership changes and relays for a room are
// serialized under one lock, so the two-participant cap can never be
// exceeded by concurrent joins.
type Registry struct {
	mu    sync.Mutex
	cfg   *config.Config
	rooms map[string]*Room

	// OnMatchEnd, when set, is called after a winner is declared.
	// Wired to storage in main; nil means no recording.
	OnMatchEnd func(matchID, winnerID, winnerName, loserID, loserName string, winnerScore, loserScore int)
}

// NewRegistry creates an empty room registry.
func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{
		cfg:   cfg,
		rooms: make(map[string]*Room),
	}
}

// Join adds the client to the room with the given code. An unknown code
// creates a Waiting room; the second join makes it Active and schedules
// the game_start relay after the configured grace delay. A third join is
// refused with ErrRoomFull and mutates nothing. An empty code gets a
// freshly generated one.
func (reg *Registry) Join(c *ws.Client, name, code string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if code == "" {
		code = GenerateCode(reg.cfg.RoomCodeLength)
		for reg.rooms[code] != nil {
			code = GenerateCode(reg.cfg.RoomCodeLength)
		}
	}

	room := reg.rooms[code]
	if room == nil {
		room = &Room{Code: code, MatchID: uuid.NewString()}
		reg.rooms[code] = room
		metrics.RoomsActive.Inc()
		slog.Info("room created", "tag", "rooms", "code", code)
	}

	if len(room.members) >= 2 {
		return roomerrors.ErrRoomFull
	}

	c.Name = name
	c.RoomCode = code
	room.members = append(room.members, &participant{client: c})
	slog.Info("participant joined", "tag", "rooms", "code", code, "name", name, "members", len(room.members))

	reg.relay(room, PlayerJoined(room))

	if len(room.members) == 2 {
		// Grace delay before the start signal so both clients can finish
		// local setup.
		delay := time.Duration(reg.cfg.StartDelayMS) * time.Millisecond
		go reg.startAfter(room, code, delay)
	}
	return nil
}

// startAfter relays game_start once the grace delay elapsed, unless the
// room emptied out or restarted in the meantime.
func (reg *Registry) startAfter(room *Room, code string, delay time.Duration) {
	time.Sleep(delay)

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.rooms[code] != room || len(room.members) != 2 || room.started {
		return
	}
	room.started = true
	slog.Info("game start", "tag", "rooms", "code", code, "match", room.MatchID)
	reg.relay(room, GameStart(room))
}

// Leave removes the client from its room, if any. The remaining
// participant gets a membership update; the game itself is not ended by
// membership loss.
func (reg *Registry) Leave(c *ws.Client) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := c.RoomCode
	if code == "" {
		return
	}
	c.RoomCode = ""

	room := reg.rooms[code]
	if room == nil {
		return
	}

	for i, p := range room.members {
		if p.client == c {
			room.members = append(room.members[:i], room.members[i+1:]...)
			break
		}
	}
	slog.Info("participant left", "tag", "rooms", "code", code, "name", c.Name, "members", len(room.members))

	if len(room.members) == 0 {
		delete(reg.rooms, code)
		metrics.RoomsActive.Dec()
		slog.Info("room destroyed", "tag", "rooms", "code", code)
		return
	}
	reg.relay(room, PlayerLeft(room))
}

// PushProgress records the client's self-reported progress and relays it
// verbatim to the other room member. A ranksRemaining==0 report is the
// global win condition: a terminal game_over naming the reporter is
// relayed to all members exactly once.
func (reg *Registry) PushProgress(c *ws.Client, p game.Progress) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room := reg.rooms[c.RoomCode]
	if room == nil {
		return roomerrors.ErrNotInRoom
	}

	var self *participant
	for _, m := range room.members {
		if m.client == c {
			self = m
			break
		}
	}
	if self == nil {
		return roomerrors.ErrNotInRoom
	}
	self.progress = p

	update, _ := json.Marshal(ws.OpponentUpdateMsg{
		Type:     "opponent_update",
		SourceID: c.ID,
		Name:     c.Name,
		Progress: p,
	})
	for _, m := range room.members {
		if m.client == c {
			continue
		}
		wsutil.SafeSend(m.client.Send, update)
		metrics.RelayMessages.Inc()
	}

	if p.RanksRemaining == 0 && !room.finished {
		reg.declareWinner(room, self)
	}
	return nil
}

// declareWinner relays the terminal game_over to all members and records
// the finished match. Caller holds the registry lock.
func (reg *Registry) declareWinner(room *Room, winner *participant) {
	room.finished = true
	slog.Info("game over", "tag", "rooms", "code", room.Code, "winner", winner.client.Name, "score", winner.progress.Score)

	data, _ := json.Marshal(ws.GameOverMsg{
		Type:       "game_over",
		WinnerID:   winner.client.ID,
		WinnerName: winner.client.Name,
	})
	for _, m := range room.members {
		wsutil.SafeSend(m.client.Send, data)
		metrics.RelayMessages.Inc()
		m.client.NotifyPeerResult(winner.client.ID, winner.client.Name)
	}

	if reg.OnMatchEnd != nil && len(room.members) == 2 {
		var loser *participant
		for _, m := range room.members {
			if m != winner {
				loser = m
			}
		}
		go reg.OnMatchEnd(room.MatchID,
			winner.client.ID, winner.client.Name,
			loser.client.ID, loser.client.Name,
			winner.progress.Score, loser.progress.Score)
	}
}

// relay marshals the message and sends it to every room member.
func (reg *Registry) relay(room *Room, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshaling relay message", "tag", "rooms", "err", err)
		return
	}
	for _, m := range room.members {
		wsutil.SafeSend(m.client.Send, data)
		metrics.RelayMessages.Inc()
	}
}

// PlayerJoined builds the membership message sent after a join.
func PlayerJoined(room *Room) ws.PlayerJoinedMsg {
	return ws.PlayerJoinedMsg{Type: "player_joined", RoomCode: room.Code, Members: room.memberList()}
}

// GameStart builds the start signal sent after the grace delay.
func GameStart(room *Room) ws.GameStartMsg {
	return ws.GameStartMsg{Type: "game_start", Members: room.memberList()}
}

// PlayerLeft builds the membership message sent after a leave.
func PlayerLeft(room *Room) ws.PlayerLeftMsg {
	return ws.PlayerLeftMsg{Type: "player_left", Members: room.memberList()}
}
