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

package notification

import (
	"context"
	"time"
)

// EventMetadata carries optional context about a change.
type EventMetadata struct {
	PreviousStatus string         `json:"previousStatus,omitempty"`
	NewStatus      string         `json:"newStatus,omitempty"`
	Phase          string         `json:"phase,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// NotificationEvent is a domain change reported by a request handler.
type NotificationEvent struct {
	Resource  string         `json:"resource"`
	Action    string         `json:"action"`
	EntityID  string         `json:"entityId"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data"`
	Metadata  *EventMetadata `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ProcessedEvent is a filtered event with its resolved recipients. It is never modified
// after it has been built.
type ProcessedEvent struct {
	ID         string         `json:"id"`
	Resource   string         `json:"resource"`
	Action     string         `json:"action"`
	EntityID   string         `json:"entityId"`
	Data       map[string]any `json:"data"`
	Timestamp  time.Time      `json:"timestamp"`
	Recipients []string       `json:"recipients"`
}

// UserNotification is the envelope pushed to a single recipient.
type UserNotification struct {
	Type      string         `json:"type"`
	Event     ProcessedEvent `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
}

// Stats reports the state of the notification queue.
type Stats struct {
	QueueSize   int     `json:"queueSize"`
	Processing  bool    `json:"processing"`
	HistorySize int     `json:"historySize"`
	Uptime      float64 `json:"uptime"`
	Dispatched  int64   `json:"dispatched"`
	Dropped     int64   `json:"dropped"`
	Failed      int64   `json:"failed"`
}

// Broadcaster delivers processed events to connected clients.
type Broadcaster interface {
	BroadcastToResource(resource, action string, payload any) error
	SendToUser(userID string, payload any) error
}

// UserDirectoryInterface answers the lookups needed to resolve recipients.
type UserDirectoryInterface interface {
	GetUserIDsByRole(ctx context.Context, role string) ([]string, error)
	GetUserIDsByDepartment(ctx context.Context, departmentID string) ([]string, error)
	GetRequestOwner(ctx context.Context, requestID string) (string, error)
}

// CacheInvalidator drops cached responses under a path prefix.
type CacheInvalidator interface {
	InvalidatePrefix(pathPrefix string) int
}
