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

import "encoding/json"

// Message types exchanged over the websocket.
const (
	MessageTypeSubscribe     = "subscribe"
	MessageTypeUnsubscribe   = "unsubscribe"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
	MessageTypeResourceEvent = "resource_event"
	MessageTypeError         = "error"
)

// wildcardAction subscribes to every action of a resource.
const wildcardAction = "*"

// ClientMessage is a control message sent by a websocket client.
type ClientMessage struct {
	Type     string `json:"type"`
	Resource string `json:"resource"`
	Action   string `json:"action,omitempty"`
}

// ResourceMessage carries a broadcast to the subscribers of a resource.
type ResourceMessage struct {
	Type     string          `json:"type"`
	Resource string          `json:"resource"`
	Action   string          `json:"action"`
	Payload  json.RawMessage `json:"payload"`
}

// ControlMessage acknowledges or rejects a client message.
type ControlMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// PerformanceRecorder receives websocket activity counters.
type PerformanceRecorder interface {
	RecordWebSocketConnection(count int)
	RecordWebSocketMessage()
	RecordWebSocketError()
}

type noopRecorder struct{}

func (noopRecorder) RecordWebSocketConnection(int) {}
func (noopRecorder) RecordWebSocketMessage()       {}
func (noopRecorder) RecordWebSocketError()         {}

func subscriptionKey(resource, action string) string {
	if action == "" {
		action = wildcardAction
	}
	return resource + ":" + action
}
