package websockets

import (
	"sync"
	"turnover/internal/models"

	"github.com/google/uuid"
)

const (
	STATUS_UNAUTHENTICATED int32 = iota
	STATUS_AUTHENTICATED
	STATUS_CLOSED
)

type Hub struct {
	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client
	mutex      sync.RWMutex
}

func (h *Hub) run(m *Manager) {
	for {
		select {
		case client := <-h.register:
			m.registerClient(client)
		case client := <-h.unregister:
			m.unregisterClient(client)
		case <-m.done:
			return
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	m.hub.clients[client.ID] = client

	m.log.Function("registerClient").Debug("Client registered", "clientID", client.ID)
}

// unregisterClient is idempotent; both pumps call it on exit.
func (m *Manager) unregisterClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	if _, ok := m.hub.clients[client.ID]; !ok {
		return
	}
	delete(m.hub.clients, client.ID)

	client.status.Store(STATUS_CLOSED)
	client.closeOnce.Do(func() { close(client.send) })

	m.log.Function("unregisterClient").Info("Client unregistered",
		"clientID", client.ID, "userID", client.UserID)
}

// SendMessageToUser delivers to every authenticated connection of the user
// and reports how many accepted the message.
func (m *Manager) SendMessageToUser(userID uuid.UUID, message Message) int {
	log := m.log.Function("SendMessageToUser")

	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	sent := 0
	connections := 0
	for _, client := range m.hub.clients {
		if client.Status() != STATUS_AUTHENTICATED || client.UserID != userID {
			continue
		}
		connections++
		if client.enqueue(message) {
			sent++
		}
	}

	if connections == 0 {
		log.Debug("No connections found for user", "userID", userID, "messageID", message.ID)
		return 0
	}

	log.Info("Message sent to user connections",
		"userID", userID, "messageID", message.ID, "sentTo", sent, "totalConnections", connections)
	return sent
}

func (m *Manager) sendToRole(role models.Role, message Message) int {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	sent := 0
	for _, client := range m.hub.clients {
		if client.Status() == STATUS_AUTHENTICATED && client.Role == role && client.enqueue(message) {
			sent++
		}
	}

	m.log.Function("sendToRole").Debug("Message sent to role",
		"role", role, "messageID", message.ID, "clientCount", sent)
	return sent
}
