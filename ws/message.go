package ws

import (
	"encoding/json"

	"pyramid-eleven-server/game"
)

// InboundEnvelope is the generic envelope for all client-to-server
// messages. The Type field is used for routing; Raw holds the full JSON
// payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// JoinRoomMsg asks to join (or create) a room. An empty RoomCode makes
// the server generate a fresh one.
type JoinRoomMsg struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	RoomCode string `json:"roomCode"`
}

// LeaveRoomMsg leaves the current room.
type LeaveRoomMsg struct {
	Type string `json:"type"`
}

// NewGameMsg starts a fresh local game instance on this connection.
// Mode is solo, vsai or versus; Difficulty names an AI tier for vsai.
type NewGameMsg struct {
	Type       string `json:"type"`
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty,omitempty"`
}

// SelectSlotMsg toggles a pyramid slot in the selection.
type SelectSlotMsg struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// SelectOffPileMsg toggles the off-pile card in the selection.
type SelectOffPileMsg struct {
	Type string `json:"type"`
}

// ResolveMsg attempts to resolve the current selection as a match.
type ResolveMsg struct {
	Type string `json:"type"`
}

// UseBonusMsg spends a bonus token on the single selected unit.
type UseBonusMsg struct {
	Type string `json:"type"`
}

// DrawMsg draws the next reserve card onto the off-pile.
type DrawMsg struct {
	Type string `json:"type"`
}

// PlayerMoveMsg is a self-reported Progress push from a client that runs
// its own engine. Hosted games push through the same path automatically.
type PlayerMoveMsg struct {
	Type     string        `json:"type"`
	Progress game.Progress `json:"progress"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client message is malformed or out of place.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Member is one room participant as seen by clients.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerJoinedMsg carries the room's membership after a join.
type PlayerJoinedMsg struct {
	Type     string   `json:"type"`
	RoomCode string   `json:"roomCode"`
	Members  []Member `json:"members"`
}

// GameStartMsg is relayed to both members after the grace delay once the
// room is full.
type GameStartMsg struct {
	Type    string   `json:"type"`
	Members []Member `json:"members"`
}

// OpponentUpdateMsg relays a peer's self-reported Progress verbatim.
type OpponentUpdateMsg struct {
	Type     string        `json:"type"`
	SourceID string        `json:"sourceId"`
	Name     string        `json:"name"`
	Progress game.Progress `json:"progress"`
}

// GameOverMsg declares the room's winner from a ranksRemaining==0 push.
type GameOverMsg struct {
	Type       string `json:"type"`
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
}

// PlayerLeftMsg carries the room's membership after a disconnect or
// explicit leave. The game itself is not ended by membership loss.
type PlayerLeftMsg struct {
	Type    string   `json:"type"`
	Members []Member `json:"members"`
}

// RoomFullMsg rejects a third join attempt.
type RoomFullMsg struct {
	Type string `json:"type"`
}
