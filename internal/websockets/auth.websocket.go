package websockets

import (
	"context"
	"time"

	"github.com/google/uuid"
)

func (c *Client) startAuthTimeout() {
	log := c.Manager.log.Function("startAuthTimeout")

	go func() {
		timer := time.NewTimer(AUTH_HANDSHAKE_TIMEOUT)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-c.Manager.done:
			return
		}

		if c.Status() != STATUS_UNAUTHENTICATED {
			return
		}

		log.Warn("Client failed to authenticate within timeout, disconnecting",
			"clientID", c.ID, "timeout", AUTH_HANDSHAKE_TIMEOUT)
		c.sendAuthFailure("Authentication timeout")
	}()
}

func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.Status() != STATUS_UNAUTHENTICATED {
		log.Warn("Auth response from already authenticated client", "clientID", c.ID)
		return
	}

	token, ok := message.Data["token"].(string)
	if !ok || token == "" {
		log.Warn("Invalid token in auth response", "clientID", c.ID)
		c.sendAuthFailure("Invalid token format")
		return
	}

	c.authenticate(token)
}

// authenticate validates the token and binds the connection to its user.
func (c *Client) authenticate(token string) bool {
	log := c.Manager.log.Function("authenticate")

	ctx, cancel := context.WithTimeout(context.Background(), AUTH_HANDSHAKE_TIMEOUT)
	defer cancel()

	info, err := c.Manager.auth.ValidateToken(ctx, token)
	if err != nil {
		log.Info("WebSocket token validation failed", "clientID", c.ID, "error", err.Error())
		c.sendAuthFailure("Authentication failed")
		return false
	}

	user, err := c.Manager.users.GetByID(ctx, c.Manager.db, info.UserID)
	if err != nil || !user.IsActive {
		log.Info("WebSocket user not found or inactive", "clientID", c.ID, "userID", info.UserID)
		c.sendAuthFailure("User not found")
		return false
	}

	c.UserID = user.ID
	c.Role = user.Role
	c.status.Store(STATUS_AUTHENTICATED)

	log.Info("WebSocket client authenticated", "clientID", c.ID, "userID", user.ID, "role", user.Role)

	c.enqueue(Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_SUCCESS,
		Channel:   "system",
		Action:    "authenticated",
		UserID:    user.ID.String(),
		Data:      map[string]any{"userId": user.ID.String(), "role": string(user.Role)},
		Timestamp: time.Now().UTC(),
	})
	return true
}

func (c *Client) sendAuthFailure(reason string) {
	c.enqueue(Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_FAILURE,
		Channel:   "system",
		Action:    "authentication_failed",
		Data:      map[string]any{"reason": reason},
		Timestamp: time.Now().UTC(),
	})

	c.Manager.log.Function("sendAuthFailure").
		Info("Auth failure sent, closing connection", "clientID", c.ID, "reason", reason)

	go func() {
		time.Sleep(100 * time.Millisecond)
		if c.Connection != nil {
			_ = c.Connection.Close()
		}
	}()
}

func (c *Client) sendAuthRequest() error {
	log := c.Manager.log.Function("sendAuthRequest")

	authRequest := Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_REQUEST,
		Channel:   "system",
		Action:    "authenticate",
		Timestamp: time.Now().UTC(),
	}

	if err := c.Connection.WriteJSON(authRequest); err != nil {
		return log.Err("failed to send auth request", err, "clientID", c.ID)
	}

	return nil
}

func (c *Client) handleUnauthenticatedMessage(message Message) {
	c.Manager.log.Function("handleUnauthenticatedMessage").
		Warn("Blocking message from unauthenticated client", "clientID", c.ID, "type", message.Type)

	c.enqueue(Message{
		ID:        uuid.New().String(),
		Type:      MESSAGE_TYPE_AUTH_FAILURE,
		Channel:   "system",
		Action:    "authentication_required",
		Data:      map[string]any{"reason": "Authentication required"},
		Timestamp: time.Now().UTC(),
	})
}
