package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	EventTableCreated = "table_created"
	EventTableDeleted = "table_deleted"
	EventNotification = "notification"
)

// Subscriber scopes. A client subscribed to ScopeAll receives every event.
const (
	ScopeAll     = "all"
	ScopeForm    = "form"
	ScopeBrowser = "browser"
)

type Message struct {
	Event     string      `json:"event"`
	Component string      `json:"component"`
	Data      interface{} `json:"data"`
}

// Hub menampung semua client websocket layar meja beserta scope-nya
type Hub struct {
	clients map[*websocket.Conn]string // conn -> scope
	mutex   sync.Mutex
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		log:     log,
	}
}

// ValidScope reports whether scope names a known subscription.
func ValidScope(scope string) bool {
	return scope == ScopeAll || scope == ScopeForm || scope == ScopeBrowser
}

// Register -> menambahkan connection dengan scope
func (h *Hub) Register(conn *websocket.Conn, scope string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = scope
}

// Unregister -> melepaskan connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// ClientCount -> jumlah client aktif
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast -> kirim pesan ke semua client yang scope-nya cocok.
// Client yang gagal ditulis langsung dilepas.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("marshal live message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, scope := range h.clients {
		if scope != ScopeAll && scope != msg.Component {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.WithError(err).WithField("scope", scope).Warn("dropping live client")
			delete(h.clients, conn)
			conn.Close()
		}
	}
	h.log.WithFields(logrus.Fields{
		"event":   msg.Event,
		"clients": len(h.clients),
	}).Debug("broadcast live message")
}
