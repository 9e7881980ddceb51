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

package broadcast

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/procurehub/procurement-server/internal/system/log"
)

// client is one websocket connection.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	sendMu sync.Mutex
	send   chan []byte
	done   bool

	subsMu        sync.RWMutex
	subscriptions map[string]struct{}

	closeOnce sync.Once
}

func newClient(h *Hub, conn *websocket.Conn, userID string) *client {
	return &client{
		hub:           h,
		conn:          conn,
		userID:        userID,
		send:          make(chan []byte, h.cfg.SendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
}

// enqueue queues a message for the write pump. It returns false when the buffer is full
// or the client is closed.
func (c *client) enqueue(message []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.done {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.sendMu.Lock()
		c.done = true
		close(c.send)
		c.sendMu.Unlock()
	})
}

func (c *client) subscribed(resource, action string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	if _, ok := c.subscriptions[subscriptionKey(resource, wildcardAction)]; ok {
		return true
	}
	_, ok := c.subscriptions[subscriptionKey(resource, action)]
	return ok
}

func (c *client) subscribe(resource, action string) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	c.subscriptions[subscriptionKey(resource, action)] = struct{}{}
}

func (c *client) unsubscribe(resource, action string) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	delete(c.subscriptions, subscriptionKey(resource, action))
}

// readPump handles control messages until the connection fails.
func (c *client) readPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				c.hub.recorder.RecordWebSocketError()
				c.hub.logger.Debug("Websocket read failed", log.Error(err))
			}
			return
		}
		c.hub.recorder.RecordWebSocketMessage()
		c.handle(msg)
	}
}

func (c *client) handle(msg ClientMessage) {
	var reply ControlMessage
	switch msg.Type {
	case MessageTypeSubscribe:
		if msg.Resource == "" {
			reply = ControlMessage{Type: MessageTypeError, Message: "resource is required"}
			break
		}
		c.subscribe(msg.Resource, msg.Action)
		reply = ControlMessage{Type: "subscribed", Message: subscriptionKey(msg.Resource, msg.Action)}
	case MessageTypeUnsubscribe:
		c.unsubscribe(msg.Resource, msg.Action)
		reply = ControlMessage{Type: "unsubscribed", Message: subscriptionKey(msg.Resource, msg.Action)}
	case MessageTypePing:
		reply = ControlMessage{Type: MessageTypePong}
	default:
		reply = ControlMessage{Type: MessageTypeError, Message: "unknown message type"}
	}

	raw, err := json.Marshal(reply)
	if err != nil {
		return
	}
	if !c.enqueue(raw) {
		c.hub.recorder.RecordWebSocketError()
	}
}

// writePump drains the send buffer and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.recorder.RecordWebSocketError()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
