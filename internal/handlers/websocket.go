package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"arcade-pot-backend/internal/models"
	"arcade-pot-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams pot and cycle status to connected game clients
// and pushes settlement results as they happen. Implements
// services.Broadcaster.
type WebSocketHandler struct {
	mongo *services.MongoService
	hub   *statusHub
	log   *logrus.Logger
}

type statusHub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan *Message
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewWebSocketHandler(ctx context.Context, mongo *services.MongoService, log *logrus.Logger) *WebSocketHandler {
	hub := &statusHub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan *Message, 100),
	}

	h := &WebSocketHandler{
		mongo: mongo,
		hub:   hub,
		log:   log,
	}

	go hub.run(ctx)
	go h.pushStatusLoop(ctx)

	return h
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	h.hub.register <- conn

	defer func() {
		h.hub.unregister <- conn
		conn.Close()
	}()

	h.sendStatuses(conn)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Warn("websocket read error")
			}
			break
		}

		if msg.Type == "PING" {
			conn.WriteJSON(Message{Type: "PONG", Data: gin.H{"timestamp": time.Now().Unix()}})
		}
	}
}

// BroadcastSettlement pushes the outcome of a settled cycle to all clients.
func (h *WebSocketHandler) BroadcastSettlement(d *models.Distribution) {
	h.hub.broadcast <- &Message{
		Type: "SETTLEMENT",
		Data: d,
	}
}

func (h *WebSocketHandler) pushStatusLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			statuses, err := h.statuses(ctx)
			if err != nil {
				h.log.WithError(err).Warn("failed to load game statuses for feed")
				continue
			}
			h.hub.broadcast <- &Message{Type: "STATUS_UPDATE", Data: statuses}
		}
	}
}

func (h *WebSocketHandler) sendStatuses(conn *websocket.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	statuses, err := h.statuses(ctx)
	if err != nil {
		h.log.WithError(err).Warn("failed to load game statuses for new client")
		return
	}
	conn.WriteJSON(Message{Type: "STATUS_UPDATE", Data: statuses})
}

func (h *WebSocketHandler) statuses(ctx context.Context) ([]models.GameStatus, error) {
	games, err := h.mongo.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	statuses := make([]models.GameStatus, 0, len(games))
	for i := range games {
		statuses = append(statuses, games[i].Status(now))
	}
	return statuses, nil
}

func (hub *statusHub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for conn := range hub.clients {
				conn.Close()
			}
			return
		case conn := <-hub.register:
			hub.clients[conn] = true
		case conn := <-hub.unregister:
			delete(hub.clients, conn)
		case message := <-hub.broadcast:
			for conn := range hub.clients {
				conn.WriteJSON(message)
			}
		}
	}
}
