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
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/procurehub/procurement-server/internal/system/config"
	"github.com/procurehub/procurement-server/internal/system/log"
)

const (
	channelKindResource = "resource"
	channelKindUser     = "user"
	publishTimeout      = 3 * time.Second
)

// envelope is the message published on a Redis channel.
type envelope struct {
	Origin   string          `json:"origin"`
	Resource string          `json:"resource,omitempty"`
	Action   string          `json:"action,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

// Connect creates a Redis client from the configuration and verifies it answers.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(cfg.Address, "redis://") || strings.HasPrefix(cfg.Address, "rediss://") {
		opt, err := redis.ParseURL(cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Address, err)
	}
	return client, nil
}

// RedisBroadcaster publishes deliveries so every server instance can forward them to
// its own websocket clients.
type RedisBroadcaster struct {
	client   *redis.Client
	prefix   string
	instance string
	logger   *log.Logger
}

// NewRedisBroadcaster creates a broadcaster publishing under the channel prefix.
func NewRedisBroadcaster(client *redis.Client, prefix string) *RedisBroadcaster {
	return &RedisBroadcaster{
		client:   client,
		prefix:   prefix,
		instance: uuid.NewString(),
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "RedisBroadcaster")),
	}
}

// InstanceID identifies the messages published by this server.
func (b *RedisBroadcaster) InstanceID() string {
	return b.instance
}

// BroadcastToResource publishes a resource broadcast.
func (b *RedisBroadcaster) BroadcastToResource(resource, action string, payload any) error {
	return b.publish(b.resourceChannel(resource), envelope{Resource: resource, Action: action}, payload)
}

// SendToUser publishes a user scoped notification.
func (b *RedisBroadcaster) SendToUser(userID string, payload any) error {
	return b.publish(b.userChannel(userID), envelope{UserID: userID}, payload)
}

// Relay subscribes to the channels of every instance and forwards the messages other
// instances published into the local broadcaster. It blocks until ctx is done.
func (b *RedisBroadcaster) Relay(ctx context.Context, local Target) error {
	pubsub := b.client.PSubscribe(ctx, b.prefix+":*")
	defer func() {
		if err := pubsub.Close(); err != nil {
			b.logger.Error("Failed to close Redis subscription", log.Error(err))
		}
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe redis channels: %w", err)
	}
	b.logger.Info("Relaying Redis broadcasts", log.String("pattern", b.prefix+":*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.relayMessage(msg.Payload, local)
		}
	}
}

func (b *RedisBroadcaster) relayMessage(raw string, local Target) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		b.logger.Warn("Ignoring malformed Redis broadcast", log.Error(err))
		return
	}
	if env.Origin == b.instance {
		return
	}

	var err error
	switch {
	case env.UserID != "":
		err = local.SendToUser(env.UserID, env.Payload)
	case env.Resource != "":
		err = local.BroadcastToResource(env.Resource, env.Action, env.Payload)
	default:
		return
	}
	if err != nil {
		b.logger.Warn("Failed to relay Redis broadcast", log.Error(err))
	}
}

func (b *RedisBroadcaster) publish(channel string, env envelope, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode redis payload: %w", err)
	}
	env.Origin = b.instance
	env.Payload = raw

	message, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode redis envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := b.client.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

func (b *RedisBroadcaster) resourceChannel(resource string) string {
	return fmt.Sprintf("%s:%s:%s", b.prefix, channelKindResource, resource)
}

func (b *RedisBroadcaster) userChannel(userID string) string {
	return fmt.Sprintf("%s:%s:%s", b.prefix, channelKindUser, userID)
}
