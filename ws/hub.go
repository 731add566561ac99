package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pyramid-eleven-server/config"
	"pyramid-eleven-server/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Coordinator defines what the hub and clients need from the session
// registry. Implemented by rooms.Registry; declared here to avoid an
// import cycle.
type Coordinator interface {
	// Join adds the client to the room with the given code, creating it
	// if unknown. Returns roomerrors.ErrRoomFull when two participants
	// are already present.
	Join(c *Client, name, code string) error
	// Leave removes the client from its room, if any.
	Leave(c *Client)
	// PushProgress relays the client's self-reported progress to its
	// room peer. Returns roomerrors.ErrNotInRoom when the client has no
	// room.
	PushProgress(c *Client, p game.Progress) error
}

// Hub maintains the set of active clients.
type Hub struct {
	Clients     map[*Client]bool
	Register    chan *Client
	Unregister  chan *Client
	Coordinator Coordinator
	Config      *config.Config
}

// NewHub creates a new Hub.
func NewHub(cfg *config.Config, coord Coordinator) *Hub {
	return &Hub{
		Clients:     make(map[*Client]bool),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		Coordinator: coord,
		Config:      cfg,
	}
}

// Run starts the hub's main loop. Should be run as a goroutine. When ctx
// is cancelled (server shutdown), Run returns and no longer accepts new
// registrations.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping", "tag", "hub")
			return
		case client := <-h.Register:
			h.Clients[client] = true
			slog.Info("client connected", "tag", "hub", "id", client.ID, "total", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				slog.Info("client disconnected", "tag", "hub", "id", client.ID, "total", len(h.Clients))

				// Transport loss: drop room membership (the peer gets a
				// player_left relay) and stop any hosted game instance.
				h.Coordinator.Leave(client)
				client.stopGame()
			}
		}
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade", "tag", "hub", "err", err)
		return
	}

	client := &Client{
		Hub:  h,
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
