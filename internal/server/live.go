package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"magic-counter/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub pushes fresh derived game snapshots to websocket subscribers
// whenever the game's log changes. It registers itself as a game
// observer at construction.
type Hub struct {
	views  *service.ViewService
	logger zerolog.Logger

	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]chan service.GameView
}

func NewHub(games *service.GameService, views *service.ViewService, logger zerolog.Logger) *Hub {
	h := &Hub{
		views:  views,
		logger: logger,
		conns:  make(map[string]map[*websocket.Conn]chan service.GameView),
	}
	games.RegisterObserver(h.gameChanged)
	return h
}

func (h *Hub) gameChanged(gameID string) {
	h.mu.Lock()
	subscribers := make([]chan service.GameView, 0, len(h.conns[gameID]))
	for _, send := range h.conns[gameID] {
		subscribers = append(subscribers, send)
	}
	h.mu.Unlock()

	if len(subscribers) == 0 {
		return
	}

	view, err := h.views.GameView(gameID)
	if err != nil {
		// Removed game: subscribers drop on their next write failure.
		return
	}
	for _, send := range subscribers {
		select {
		case send <- view:
		default:
			// Slow subscriber; it catches up on the next change.
		}
	}
}

// ServeWS upgrades the connection and streams snapshots for one game.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	send := make(chan service.GameView, 8)
	h.mu.Lock()
	if h.conns[gameID] == nil {
		h.conns[gameID] = make(map[*websocket.Conn]chan service.GameView)
	}
	h.conns[gameID][conn] = send
	h.mu.Unlock()

	// Initial snapshot so a fresh subscriber is never blank.
	if view, err := h.views.GameView(gameID); err == nil {
		select {
		case send <- view:
		default:
		}
	}

	go h.writeLoop(gameID, conn, send)
	go h.readLoop(gameID, conn)
}

func (h *Hub) writeLoop(gameID string, conn *websocket.Conn, send chan service.GameView) {
	for view := range send {
		if err := conn.WriteJSON(view); err != nil {
			h.drop(gameID, conn)
			return
		}
	}
}

// readLoop only watches for close; subscribers never send payloads.
func (h *Hub) readLoop(gameID string, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(gameID, conn)
			return
		}
	}
}

func (h *Hub) drop(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.conns[gameID][conn]; ok {
		delete(h.conns[gameID], conn)
		close(send)
		if len(h.conns[gameID]) == 0 {
			delete(h.conns, gameID)
		}
	}
	h.mu.Unlock()
	conn.Close()
}
