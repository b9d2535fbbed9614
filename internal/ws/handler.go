package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"auctionhouse/internal/notifier"
	"auctionhouse/internal/repository"
	"auctionhouse/internal/services"
	"auctionhouse/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const readWait = 60 * time.Second

// clientMessage is the inbound protocol: subscribe/unsubscribe to an item.
type clientMessage struct {
	Action string `json:"action"`
	ItemID string `json:"itemId"`
}

type ackFrame struct {
	Type   string    `json:"type"`
	ItemID uuid.UUID `json:"itemId"`
}

type Handler struct {
	auth  *services.AuthService
	hub   *Hub
	items repository.ItemRepository
	log   *logger.Logger
}

func NewHandler(auth *services.AuthService, hub *Hub, items repository.ItemRepository, log *logger.Logger) *Handler {
	return &Handler{auth: auth, hub: hub, items: items, log: log}
}

// Connect upgrades the request and runs the connection's read loop. A
// missing or invalid token gets one error frame and a close; a valid token
// registers the client, which also triggers the queued-notification replay.
func (h *Handler) Connect(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	claims, err := h.auth.ParseAccessToken(c.Query("token"))
	if err != nil {
		h.sendError(conn, "Authentication failed")
		_ = conn.Close()
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		h.sendError(conn, "Authentication failed")
		_ = conn.Close()
		return
	}

	client := NewClient(conn, userID)
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		h.handleMessage(c.Request.Context(), client, raw)
	}

	h.hub.Unregister(client)
}

func (h *Handler) handleMessage(ctx context.Context, client *Client, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Action == "" {
		h.sendErrorTo(client, "Invalid message format")
		return
	}

	itemID, err := uuid.Parse(msg.ItemID)
	if err != nil {
		h.sendErrorTo(client, "Invalid itemId")
		return
	}

	switch msg.Action {
	case "subscribe":
		// Unknown items get an error frame but the connection stays open.
		exists, err := h.items.Exists(ctx, itemID)
		if err != nil || !exists {
			h.sendErrorTo(client, "Item not found")
			return
		}
		h.hub.Subscribe(client, itemID)
		h.ack(client, "subscribed", itemID)
	case "unsubscribe":
		h.hub.Unsubscribe(client, itemID)
		h.ack(client, "unsubscribed", itemID)
	default:
		h.sendErrorTo(client, "Unknown action")
	}
}

func (h *Handler) ack(client *Client, typ string, itemID uuid.UUID) {
	payload, err := json.Marshal(ackFrame{Type: typ, ItemID: itemID})
	if err != nil {
		return
	}
	_ = client.Send(payload)
}

func (h *Handler) sendErrorTo(client *Client, message string) {
	payload, err := json.Marshal(notifier.ErrorFrame{Type: "error", Message: message})
	if err != nil {
		return
	}
	_ = client.Send(payload)
}

// sendError writes directly to a connection that is not yet registered.
func (h *Handler) sendError(conn *websocket.Conn, message string) {
	payload, err := json.Marshal(notifier.ErrorFrame{Type: "error", Message: message})
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}
