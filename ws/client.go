package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pyramid-eleven-server/ai"
	"pyramid-eleven-server/game"
	"pyramid-eleven-server/roomerrors"
	"pyramid-eleven-server/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the rest of
// the server. Each client may host at most one game instance at a time
// and belong to at most one room.
type Client struct {
	Hub      *Hub
	ID       string
	Conn     *websocket.Conn
	Send     chan []byte
	Name     string
	RoomCode string
	Game     *game.Game

	opponent *ai.Opponent
}

// ReadPump pumps messages from the websocket connection into the server.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("websocket read", "tag", "ws", "id", c.ID, "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket
// connection. It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case "join_room":
		c.handleJoinRoom(envelope.Raw)
	case "leave_room":
		c.Hub.Coordinator.Leave(c)
	case "new_game":
		c.handleNewGame(envelope.Raw)
	case "select_slot":
		c.handleSelectSlot(envelope.Raw)
	case "select_offpile":
		c.forward(game.Action{Type: game.ActionSelectOffPile})
	case "resolve":
		c.forward(game.Action{Type: game.ActionResolve})
	case "use_bonus":
		c.forward(game.Action{Type: game.ActionUseBonus})
	case "draw":
		c.forward(game.Action{Type: game.ActionDraw})
	case "player_move":
		c.handlePlayerMove(envelope.Raw)
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleJoinRoom(raw json.RawMessage) {
	var msg JoinRoomMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid join_room message.")
		return
	}

	name := strings.TrimSpace(msg.Name)
	if name == "" {
		name = "Player"
	}
	if len(name) > c.Hub.Config.MaxNameLength {
		c.sendError(fmt.Sprintf("Name must be at most %d characters.", c.Hub.Config.MaxNameLength))
		return
	}

	// Room codes are case-insensitive opaque tokens.
	code := strings.ToUpper(strings.TrimSpace(msg.RoomCode))

	if err := c.Hub.Coordinator.Join(c, name, code); err != nil {
		if errors.Is(err, roomerrors.ErrRoomFull) {
			data, _ := json.Marshal(RoomFullMsg{Type: "room_full"})
			wsutil.SafeSend(c.Send, data)
			return
		}
		c.sendError(err.Error())
	}
}

func (c *Client) handleNewGame(raw json.RawMessage) {
	var msg NewGameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid new_game message.")
		return
	}

	switch msg.Mode {
	case game.ModeSolo, game.ModeVsAI, game.ModeVersus:
	default:
		c.sendError("Unknown game mode: " + msg.Mode)
		return
	}

	// Returning to the menu or restarting replaces any running instance;
	// its clock and opponent must not outlive it.
	c.stopGame()

	g := game.New(c.Hub.Config, msg.Mode, c.ID, c.Send)

	switch msg.Mode {
	case game.ModeVsAI:
		tier := msg.Difficulty
		if tier == "" {
			tier = "medium"
		}
		params := c.Hub.Config.Profile(tier)
		if params == nil {
			c.sendError("Unknown difficulty: " + msg.Difficulty)
			return
		}
		g.OpponentName = "AI (" + params.Name + ")"
		c.opponent = ai.NewOpponent(g, *params)
	case game.ModeVersus:
		g.OnProgress = func(p game.Progress) {
			c.Hub.Coordinator.PushProgress(c, p)
		}
	}

	c.Game = g
	go g.Run()
	if c.opponent != nil {
		go c.opponent.Run()
	}
}

func (c *Client) handleSelectSlot(raw json.RawMessage) {
	var msg SelectSlotMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid select_slot message.")
		return
	}
	c.forward(game.Action{Type: game.ActionSelectSlot, Row: msg.Row, Col: msg.Col})
}

// handlePlayerMove accepts a self-reported Progress push from a client
// that runs the engine locally. Trusted verbatim, per the authority-less
// relay model.
func (c *Client) handlePlayerMove(raw json.RawMessage) {
	var msg PlayerMoveMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid player_move message.")
		return
	}
	if err := c.Hub.Coordinator.PushProgress(c, msg.Progress); err != nil {
		c.sendError(err.Error())
	}
}

// forward hands an action to the hosted game instance, if any.
func (c *Client) forward(a game.Action) {
	if c.Game == nil {
		c.sendError("No game in progress.")
		return
	}
	select {
	case c.Game.Actions <- a:
	case <-c.Game.Done:
	}
}

// NotifyPeerResult forwards a room-relayed terminal result into the
// hosted game instance, if any, so its clock stops and it reports the
// peer-reported outcome.
func (c *Client) NotifyPeerResult(winnerID, winnerName string) {
	g := c.Game
	if g == nil {
		return
	}
	// Non-blocking: this can run on the winner's own game goroutine (via
	// the registry) and must never wait on the loop it would feed.
	select {
	case g.Actions <- game.Action{Type: game.ActionPeerResult, WinnerID: winnerID, WinnerName: winnerName}:
	case <-g.Done:
	default:
	}
}

// stopGame shuts down the hosted game instance and its AI opponent.
func (c *Client) stopGame() {
	if c.opponent != nil {
		c.opponent.Stop()
		c.opponent = nil
	}
	if c.Game != nil {
		c.Game.Stop()
		c.Game = nil
	}
}

func (c *Client) sendError(message string) {
	data, _ := json.Marshal(ErrorMsg{Type: "error", Message: message})
	wsutil.SafeSend(c.Send, data)
}
