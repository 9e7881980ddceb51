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

// Package notification batches domain change events, filters them per resource and
// fans them out to the interested users.
package notification

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/procurehub/procurement-server/internal/system/log"
	"github.com/procurehub/procurement-server/internal/system/observer"
)

type outcome int

const (
	outcomeDispatched outcome = iota
	outcomeDropped
)

// Service queues notification events and dispatches them in batches.
type Service struct {
	cfg         Config
	directory   UserDirectoryInterface
	broadcaster Broadcaster

	mu          sync.Mutex
	queue       []NotificationEvent
	invalidator CacheInvalidator

	processing atomic.Bool
	history    *historyRing
	dispatched atomic.Int64
	dropped    atomic.Int64
	failed     atomic.Int64

	sentObservers observer.Observers[ProcessedEvent]

	startTime time.Time
	now       func() time.Time
	newID     func() string
	stopCh    chan struct{}
	stopOnce  sync.Once
	logger    *log.Logger
}

// NewService creates a notification service and starts its periodic drain.
func NewService(cfg Config, directory UserDirectoryInterface, broadcaster Broadcaster) *Service {
	s := newService(cfg, directory, broadcaster, time.Now)
	go s.startDrainTicker()
	return s
}

func newService(cfg Config, directory UserDirectoryInterface, broadcaster Broadcaster,
	now func() time.Time) *Service {
	cfg.applyDefaults()
	return &Service{
		cfg:         cfg,
		directory:   directory,
		broadcaster: broadcaster,
		history:     newHistoryRing(cfg.HistoryLimit),
		startTime:   now(),
		now:         now,
		newID:       uuid.NewString,
		stopCh:      make(chan struct{}),
		logger:      log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// SetCacheInvalidator installs the collaborator told to drop cached listings of a
// resource whenever one of its events is dispatched.
func (s *Service) SetCacheInvalidator(invalidator CacheInvalidator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidator = invalidator
}

// Notify queues one event.
func (s *Service) Notify(event NotificationEvent) {
	s.enqueue(event)
	s.triggerDrain()
}

// NotifyMultiple queues several events preserving their order.
func (s *Service) NotifyMultiple(events []NotificationEvent) {
	if len(events) == 0 {
		return
	}
	s.enqueue(events...)
	s.triggerDrain()
}

// OnNotificationSent registers a callback invoked after every dispatched event.
func (s *Service) OnNotificationSent(callback func(ProcessedEvent)) func() {
	return s.sentObservers.Register(callback)
}

// GetQueueSize returns the number of events waiting to be processed.
func (s *Service) GetQueueSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// IsProcessing reports whether a drain loop is active.
func (s *Service) IsProcessing() bool {
	return s.processing.Load()
}

// GetEventHistory returns up to limit dispatched events, oldest first. A non positive
// limit returns the whole history.
func (s *Service) GetEventHistory(limit int) []ProcessedEvent {
	return s.history.last(limit)
}

// ClearHistory drops the dispatched event history.
func (s *Service) ClearHistory() {
	s.history.clear()
}

// GetStats returns the queue statistics.
func (s *Service) GetStats() Stats {
	return Stats{
		QueueSize:   s.GetQueueSize(),
		Processing:  s.IsProcessing(),
		HistorySize: s.history.len(),
		Uptime:      s.now().Sub(s.startTime).Seconds(),
		Dispatched:  s.dispatched.Load(),
		Dropped:     s.dropped.Load(),
		Failed:      s.failed.Load(),
	}
}

// Destroy stops the periodic drain. Queued events are left unprocessed.
func (s *Service) Destroy() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *Service) enqueue(events ...NotificationEvent) {
	stamp := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range events {
		event.Timestamp = stamp
		s.queue = append(s.queue, event)
	}
}

func (s *Service) startDrainTicker() {
	ticker := time.NewTicker(s.cfg.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.triggerDrain()
		case <-s.stopCh:
			return
		}
	}
}

// triggerDrain starts a drain loop unless one is already running.
func (s *Service) triggerDrain() {
	if !s.processing.CompareAndSwap(false, true) {
		return
	}
	go s.drain()
}

// drain runs until the queue is empty. The recheck after clearing the flag picks up
// events queued between the last batch and the flag reset.
func (s *Service) drain() {
	for {
		stopped := s.drainQueue()
		s.processing.Store(false)

		if stopped || s.GetQueueSize() == 0 || !s.processing.CompareAndSwap(false, true) {
			return
		}
	}
}

// drainQueue processes batches until the queue is empty. It returns true when the
// service was destroyed while waiting between batches.
func (s *Service) drainQueue() bool {
	for {
		batch := s.nextBatch()
		if len(batch) == 0 {
			return false
		}
		s.processBatch(batch)

		if s.GetQueueSize() == 0 {
			return false
		}
		if s.cfg.BatchDelay > 0 {
			select {
			case <-time.After(s.cfg.BatchDelay):
			case <-s.stopCh:
				return true
			}
		}
	}
}

func (s *Service) nextBatch() []NotificationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := min(s.cfg.BatchSize, len(s.queue))
	if n == 0 {
		return nil
	}
	batch := make([]NotificationEvent, n)
	copy(batch, s.queue[:n])
	s.queue = s.queue[n:]
	if len(s.queue) == 0 {
		s.queue = nil
	}
	return batch
}

func (s *Service) processBatch(batch []NotificationEvent) {
	for _, event := range batch {
		result, err := s.processEvent(event)
		switch {
		case err != nil:
			s.failed.Add(1)
			s.logger.Error("Failed to process notification event", log.String("resource", event.Resource),
				log.String("action", event.Action), log.String("entityID", event.EntityID), log.Error(err))
		case result == outcomeDropped:
			s.dropped.Add(1)
		default:
			s.dispatched.Add(1)
		}
	}
}

// processEvent filters, routes and dispatches one event. A panic is converted into an
// error so the rest of the batch still runs.
func (s *Service) processEvent(event NotificationEvent) (result outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing event: %v", r)
		}
	}()

	data := filterEventData(event)
	if len(data) == 0 {
		s.logDropped(event, "no visible payload")
		return outcomeDropped, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.LookupTimeout)
	defer cancel()

	recipients, err := resolveRecipients(ctx, s.directory, event)
	if err != nil {
		return outcomeDropped, err
	}
	if len(recipients) == 0 {
		s.logDropped(event, "no recipients")
		return outcomeDropped, nil
	}

	s.dispatch(ProcessedEvent{
		ID:         s.newID(),
		Resource:   event.Resource,
		Action:     event.Action,
		EntityID:   event.EntityID,
		Data:       data,
		Timestamp:  event.Timestamp,
		Recipients: recipients,
	})
	return outcomeDispatched, nil
}

func (s *Service) dispatch(event ProcessedEvent) {
	if err := s.broadcaster.BroadcastToResource(event.Resource, event.Action, event); err != nil {
		s.logger.Warn("Resource broadcast failed", log.String("eventID", event.ID),
			log.String("resource", event.Resource), log.Error(err))
	}

	envelope := UserNotification{Type: userNotificationType, Event: event, Timestamp: s.now()}
	for _, userID := range event.Recipients {
		if err := s.broadcaster.SendToUser(userID, envelope); err != nil {
			s.logger.Warn("User notification failed", log.String("eventID", event.ID),
				log.String("userID", log.MaskString(userID)), log.Error(err))
		}
	}

	s.history.add(event)

	s.mu.Lock()
	invalidator := s.invalidator
	s.mu.Unlock()
	if invalidator != nil {
		if rule, ok := resourceRules[event.Resource]; ok {
			removed := invalidator.InvalidatePrefix("/api/" + rule.apiPath)
			if removed > 0 && s.logger.IsDebugEnabled() {
				s.logger.Debug("Invalidated cached responses", log.String("resource", event.Resource),
					log.Int("entries", removed))
			}
		}
	}

	s.sentObservers.Emit(event)
}

func (s *Service) logDropped(event NotificationEvent, reason string) {
	if s.logger.IsDebugEnabled() {
		s.logger.Debug("Dropping notification event", log.String("resource", event.Resource),
			log.String("action", event.Action), log.String("reason", reason))
	}
}
