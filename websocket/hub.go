package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Client is one connected browser session, pinned to the tenant its token
// resolved to.
type Client struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Conn     *websocket.Conn
}

// Notification is pushed to every connected client of one tenant; used for
// live payment and attendance updates on admin dashboards.
type Notification struct {
	TenantID uuid.UUID   `json:"-"`
	Event    string      `json:"event"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
}

var (
	clients   = make(map[uuid.UUID]map[uuid.UUID]*websocket.Conn) // tenant -> user -> conn
	clientsMu sync.RWMutex

	Register   = make(chan *Client)
	Unregister = make(chan *Client)
	Notify     = make(chan *Notification, 32)
)

func RunHub() {
	for {
		select {
		case client := <-Register:
			clientsMu.Lock()
			if clients[client.TenantID] == nil {
				clients[client.TenantID] = make(map[uuid.UUID]*websocket.Conn)
			}
			clients[client.TenantID][client.UserID] = client.Conn
			clientsMu.Unlock()
			log.Printf("Notification client registered: user %s tenant %s", client.UserID, client.TenantID)

		case client := <-Unregister:
			clientsMu.Lock()
			if conns, ok := clients[client.TenantID]; ok {
				if conn, ok := conns[client.UserID]; ok && conn == client.Conn {
					delete(conns, client.UserID)
				}
				if len(conns) == 0 {
					delete(clients, client.TenantID)
				}
			}
			clientsMu.Unlock()
			log.Printf("Notification client unregistered: user %s", client.UserID)

		case notification := <-Notify:
			clientsMu.RLock()
			conns := clients[notification.TenantID]
			var dead []uuid.UUID
			for userID, conn := range conns {
				if err := conn.WriteJSON(notification); err != nil {
					log.Printf("Error pushing notification to user %s: %v", userID, err)
					conn.Close()
					dead = append(dead, userID)
				}
			}
			clientsMu.RUnlock()

			if len(dead) > 0 {
				clientsMu.Lock()
				for _, userID := range dead {
					delete(clients[notification.TenantID], userID)
				}
				clientsMu.Unlock()
			}
		}
	}
}

// Push queues a tenant notification without blocking the caller; dropped
// when the hub is saturated.
func Push(tenantID uuid.UUID, event, title, message string, data interface{}) {
	select {
	case Notify <- &Notification{TenantID: tenantID, Event: event, Title: title, Message: message, Data: data}:
	default:
		log.Printf("Notification hub saturated, dropping %s for tenant %s", event, tenantID)
	}
}
