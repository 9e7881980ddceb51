/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package broadcast delivers processed notification events to websocket clients and,
// when configured, to other server instances over Redis pub/sub.
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	serverconst "github.com/procurehub/procurement-server/internal/system/constants"
	"github.com/procurehub/procurement-server/internal/system/log"
	"github.com/procurehub/procurement-server/internal/system/utils"
)

const (
	maxMessageSize = 4096
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	userIDParam    = "userId"
)

// ErrHubClosed is returned when delivering through a closed hub.
var ErrHubClosed = errors.New("websocket hub closed")

// HubConfig configures a Hub.
type HubConfig struct {
	WriteTimeout   time.Duration
	SendBufferSize int
	AllowedOrigins []string
}

// Hub tracks websocket clients and their resource subscriptions.
type Hub struct {
	cfg      HubConfig
	upgrader websocket.Upgrader
	recorder PerformanceRecorder

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	logger *log.Logger
}

// NewHub creates a websocket hub. A nil recorder disables activity reporting.
func NewHub(cfg HubConfig, recorder PerformanceRecorder) *Hub {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 64
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}

	h := &Hub{
		cfg:      cfg,
		recorder: recorder,
		clients:  make(map[*client]struct{}),
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "WebSocketHub")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeHTTP upgrades the request and registers the connection. The user is taken from
// the X-User-ID header or the userId query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(serverconst.UserIDHeaderName)
	if userID == "" {
		userID = r.URL.Query().Get(userIDParam)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.recorder.RecordWebSocketError()
		h.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	c := newClient(h, conn, userID)
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(h.cfg.WriteTimeout))
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// BroadcastToResource sends the payload to every client subscribed to the resource and action.
func (h *Hub) BroadcastToResource(resource, action string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode broadcast payload: %w", err)
	}
	message, err := json.Marshal(ResourceMessage{
		Type:     MessageTypeResourceEvent,
		Resource: resource,
		Action:   action,
		Payload:  raw,
	})
	if err != nil {
		return fmt.Errorf("failed to encode broadcast message: %w", err)
	}

	targets, err := h.collect(func(c *client) bool { return c.subscribed(resource, action) })
	if err != nil {
		return err
	}
	for _, c := range targets {
		h.deliver(c, message)
	}
	return nil
}

// SendToUser sends the payload to every connection of the user. Users without an open
// connection are skipped.
func (h *Hub) SendToUser(userID string, payload any) error {
	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode user payload: %w", err)
	}

	targets, err := h.collect(func(c *client) bool { return c.userID != "" && c.userID == userID })
	if err != nil {
		return err
	}
	for _, c := range targets {
		h.deliver(c, message)
	}
	return nil
}

// ConnectionCount returns the number of open connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new connections.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	h.recorder.RecordWebSocketConnection(0)
	return nil
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.recorder.RecordWebSocketConnection(count)
	h.logger.Debug("Websocket client connected", log.String("userID", log.MaskString(c.userID)),
		log.Int("connections", count))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, found := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	c.close()
	if found {
		h.recorder.RecordWebSocketConnection(count)
		h.logger.Debug("Websocket client disconnected", log.Int("connections", count))
	}
}

func (h *Hub) collect(match func(*client) bool) ([]*client, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	targets := make([]*client, 0)
	for c := range h.clients {
		if match(c) {
			targets = append(targets, c)
		}
	}
	return targets, nil
}

// deliver queues a message without blocking. A client whose buffer is full is dropped.
func (h *Hub) deliver(c *client, message []byte) {
	if c.enqueue(message) {
		h.recorder.RecordWebSocketMessage()
		return
	}
	h.recorder.RecordWebSocketError()
	h.logger.Warn("Dropping slow websocket client", log.String("userID", log.MaskString(c.userID)))
	h.unregister(c)
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	return utils.GetAllowedOrigin(h.cfg.AllowedOrigins, origin) != ""
}
