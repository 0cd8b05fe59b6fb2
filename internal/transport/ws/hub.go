package ws

import (
	"encoding/json"
	"sync"

	"callpulse/internal/model"
	"callpulse/pkg/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supervisor message types
const (
	MsgAlert             MessageType = "alert"
	MsgResponseCompleted MessageType = "response_completed"
	MsgError             MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages supervisor WebSocket connections, keyed by tenant. Every
// supervisor watching a tenant receives that tenant's alert stream.
type Hub struct {
	// tenantID -> connID -> conn
	supervisorConns map[string]map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage

	log logger.Logger
}

// Connection represents a supervisor WebSocket connection
type Connection struct {
	ID       string
	TenantID string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to fan out to a tenant's supervisors
type BroadcastMessage struct {
	TenantID string
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log logger.Logger) *Hub {
	h := &Hub{
		supervisorConns: make(map[string]map[string]*Connection),
		register:        make(chan *Connection),
		unregister:      make(chan *Connection),
		broadcast:       make(chan *BroadcastMessage, 256),
		log:             log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.supervisorConns[conn.TenantID] == nil {
				h.supervisorConns[conn.TenantID] = make(map[string]*Connection)
			}
			h.supervisorConns[conn.TenantID][conn.ID] = conn
			h.mu.Unlock()
			h.log.Info("supervisor connected", "tenantId", conn.TenantID, "connId", conn.ID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.supervisorConns[conn.TenantID]; ok {
				if existing, ok := conns[conn.ID]; ok && existing == conn {
					delete(conns, conn.ID)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.supervisorConns, conn.TenantID)
					}
				}
			}
			h.mu.Unlock()
			h.log.Info("supervisor disconnected", "tenantId", conn.TenantID, "connId", conn.ID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for _, conn := range h.supervisorConns[msg.TenantID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToTenant sends a message to every supervisor of a tenant.
func (h *Hub) BroadcastToTenant(tenantID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn("broadcast payload not serializable", "tenantId", tenantID, "type", msgType)
		return
	}
	h.broadcast <- &BroadcastMessage{
		TenantID: tenantID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastAlert pushes an alert to a tenant's supervisors (implements
// service.AlertBroadcaster).
func (h *Hub) BroadcastAlert(tenantID string, alert model.AlertEvent) {
	h.BroadcastToTenant(tenantID, string(MsgAlert), alert)
}
