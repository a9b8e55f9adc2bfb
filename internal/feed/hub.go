package feed

import (
	"encoding/json"
	"log"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/mbeiro/StudioAppBack/internal/models"
)

// Hub fans check-in events out to every connected staff dashboard. The
// front desk sees scans land in realtime without polling the roster.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type Event struct {
	Type        string `json:"type"`
	CheckInID   int64  `json:"check_in_id"`
	SessionID   int64  `json:"session_id"`
	ClassID     int64  `json:"class_id"`
	ClassName   string `json:"class_name"`
	MemberName  string `json:"member_name"`
	SessionDate string `json:"session_date"`
	SessionTime string `json:"session_time"`
	CheckedInAt string `json:"checked_in_at"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, exists := h.clients[client]; exists {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// PublishCheckIn queues a check-in event for delivery. Publishing never
// blocks the check-in flow; if the buffer is full the event is dropped.
func (h *Hub) PublishCheckIn(detail *models.CheckInDetail) {
	event := &Event{
		Type:        "check_in",
		CheckInID:   detail.ID,
		SessionID:   detail.SessionID,
		ClassID:     detail.Session.ClassID,
		ClassName:   detail.ClassName,
		MemberName:  detail.MemberName,
		SessionDate: detail.Session.SessionDate.Format("2006-01-02"),
		SessionTime: detail.Session.SessionTime,
		CheckedInAt: detail.CheckedInAt.UTC().Format(time.RFC3339),
	}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("check-in feed buffer full, dropping event for check-in %d", detail.ID)
	}
}

func (h *Hub) deliver(event *Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("check-in feed encode event: %v", err)
		return
	}

	for client := range h.clients {
		select {
		case client.send <- encoded:
		default:
			// Slow consumer; drop it rather than stall the hub.
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ReadPump drains (and ignores) client frames until the connection closes,
// so the websocket close handshake works.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
