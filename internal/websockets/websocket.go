package websockets

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
	"turnover/internal/events"
	"turnover/internal/models"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MESSAGE_TYPE_PING          = "ping"
	MESSAGE_TYPE_PONG          = "pong"
	MESSAGE_TYPE_BROADCAST     = "broadcast"
	MESSAGE_TYPE_JOB_ASSIGNED  = "job_assigned"
	MESSAGE_TYPE_AUTH_REQUEST  = "auth_request"
	MESSAGE_TYPE_AUTH_RESPONSE = "auth_response"
	MESSAGE_TYPE_AUTH_SUCCESS  = "auth_success"
	MESSAGE_TYPE_AUTH_FAILURE  = "auth_failure"
	PING_INTERVAL              = 30 * time.Second
	PONG_TIMEOUT               = 60 * time.Second
	WRITE_TIMEOUT              = 10 * time.Second
	AUTH_HANDSHAKE_TIMEOUT     = 10 * time.Second
	MAX_MESSAGE_SIZE           = 64 * 1024
	SEND_CHANNEL_SIZE          = 64

	// TokenLocal is the upgrade-request local holding a ?token= query value.
	TokenLocal = "wsToken"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Action    string         `json:"action,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// TokenValidator checks an access token and returns its identity.
type TokenValidator interface {
	ValidateToken(ctx context.Context, raw string) (*types.TokenInfo, error)
}

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error)
}

// Subscriber is the part of the event bus the manager listens on.
type Subscriber interface {
	Subscribe(channel events.Channel, handler events.EventHandler)
}

type Client struct {
	ID         string
	UserID     uuid.UUID
	Role       models.Role
	Connection *websocket.Conn
	Manager    *Manager
	status     atomic.Int32
	send       chan Message
	closeOnce  sync.Once
}

func (c *Client) Status() int32 {
	return c.status.Load()
}

type Manager struct {
	hub   *Hub
	db    *gorm.DB
	auth  TokenValidator
	users UserLookup
	log   logger.Logger
	done  chan struct{}
	once  sync.Once
}

func New(eventBus Subscriber, auth TokenValidator, users UserLookup, db *gorm.DB) *Manager {
	log := logger.New("websockets")

	manager := &Manager{
		hub: &Hub{
			register:   make(chan *Client),
			unregister: make(chan *Client),
			clients:    make(map[string]*Client),
		},
		db:    db,
		auth:  auth,
		users: users,
		log:   log,
		done:  make(chan struct{}),
	}

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	eventBus.Subscribe(events.SEND_CHANNEL, manager.handleSendEvent)
	eventBus.Subscribe(events.BROADCAST_CHANNEL, manager.handleBroadcastEvent)

	return manager
}

func (m *Manager) Close() {
	m.once.Do(func() {
		close(m.done)
	})
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	client := &Client{
		ID:         uuid.New().String(),
		Connection: c,
		Manager:    m,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}
	client.status.Store(STATUS_UNAUTHENTICATED)

	select {
	case m.hub.register <- client:
	case <-m.done:
		_ = c.Close()
		return
	}

	defer func() {
		log.Info("Client disconnected", "clientID", client.ID, "userID", client.UserID)
		m.unregister(client)
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
	}()

	if token, ok := c.Locals(TokenLocal).(string); ok && token != "" {
		client.authenticate(token)
	} else if err := client.sendAuthRequest(); err != nil {
		return
	} else {
		client.startAuthTimeout()
	}

	go client.readPump()
	client.writePump()
}

func (m *Manager) unregister(client *Client) {
	select {
	case m.hub.unregister <- client:
	case <-m.done:
		m.unregisterClient(client)
	}
}

func (m *Manager) handleSendEvent(event events.Event) error {
	if event.UserID == nil {
		m.log.Function("handleSendEvent").Warn("send event without recipient", "eventID", event.ID)
		return nil
	}

	m.SendMessageToUser(*event.UserID, messageFromEvent(event))
	return nil
}

// handleBroadcastEvent forwards pass summaries to connected dispatchers.
func (m *Manager) handleBroadcastEvent(event events.Event) error {
	message := messageFromEvent(event)
	message.Type = MESSAGE_TYPE_BROADCAST
	message.Action = string(event.Type)

	m.sendToRole(models.RoleAdmin, message)
	return nil
}

func messageFromEvent(event events.Event) Message {
	message := Message{
		ID:        event.ID,
		Type:      string(event.Type),
		Channel:   event.Channel.String(),
		Data:      event.Data,
		Timestamp: event.Timestamp,
	}
	if event.UserID != nil {
		message.UserID = event.UserID.String()
	}
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	return message
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.unregister(c)
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		return c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT))
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			return
		}

		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	if message.Type == MESSAGE_TYPE_AUTH_RESPONSE {
		c.handleAuthResponse(message)
		return
	}

	if c.Status() != STATUS_AUTHENTICATED {
		c.handleUnauthenticatedMessage(message)
		return
	}

	switch message.Type {
	case MESSAGE_TYPE_PING:
		c.enqueue(Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_PONG,
			Channel:   "system",
			Timestamp: time.Now().UTC(),
		})
	default:
		log.Debug("Ignoring client message", "clientID", c.ID, "type", message.Type)
	}
}

// enqueue never blocks the caller; a full buffer drops the message.
func (c *Client) enqueue(message Message) bool {
	defer func() {
		// send is closed once the client unregisters.
		_ = recover()
	}()

	select {
	case c.send <- message:
		return true
	default:
		c.Manager.log.Function("enqueue").Warn("client buffer full, dropping message",
			"clientID", c.ID, "messageID", message.ID)
		return false
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID, "messageID", message.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
