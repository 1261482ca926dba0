package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"SectorPulse/internal/domain/models"
	"SectorPulse/pkg/logger"
)

const writeTimeout = 5 * time.Second

// frame is the wire shape of one broadcast alert.
type frame struct {
	Category string    `json:"category"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}

// Hub pushes fired alerts to connected WebSocket clients. Clients are
// listen-only; anything they send is read and discarded to service control
// frames.
type Hub struct {
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("ws client connected", logger.Int("clients", n))

	// Drain inbound frames until the client goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
	return nil
}

// Broadcast sends each event to every connected client. Slow or dead
// clients are dropped rather than blocking the pass.
func (h *Hub) Broadcast(events []models.Event) {
	if len(events) == 0 {
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	now := time.Now().UTC()
	for _, ev := range events {
		f := frame{Category: string(ev.Category), Text: ev.Text, At: now}
		for _, c := range conns {
			c.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.WriteJSON(f); err != nil {
				h.drop(c)
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}
