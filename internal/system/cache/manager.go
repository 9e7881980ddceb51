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

// Package cache provides the in-process HTTP response cache and its middleware.
package cache

import (
	"container/list"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/procurehub/procurement-server/internal/system/log"
)

const loggerComponentName = "CacheManager"

// storedEntry wraps a cache entry with its position in the access order.
type storedEntry struct {
	*CacheEntry
	key         CacheKey
	listElement *list.Element
}

// Manager is the response cache. It is safe for concurrent use.
type Manager struct {
	opts        Options
	entries     map[CacheKey]*storedEntry
	accessOrder *list.List
	mu          sync.Mutex

	hits               int64
	misses             int64
	sets               int64
	deletes            int64
	evictions          int64
	compressionSavings int64
	totalSize          int64
	responseTimeTotal  time.Duration
	responseTimeCount  int64

	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *log.Logger
}

// NewManager creates a cache manager and starts its background expiry sweep.
func NewManager(opts Options) *Manager {
	opts.applyDefaults()
	m := newManager(opts, time.Now)
	if !opts.Disabled {
		go m.startCleanupRoutine()
	}
	return m
}

func newManager(opts Options, now func() time.Time) *Manager {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))
	if opts.Disabled {
		logger.Warn("Response cache is disabled")
	} else {
		logger.Debug("Initializing response cache", log.Any("defaultTTL", opts.DefaultTTL),
			log.Bool("compression", opts.EnableCompression), log.Int("maxEntries", opts.MaxEntries))
	}

	return &Manager{
		opts:        opts,
		entries:     make(map[CacheKey]*storedEntry),
		accessOrder: list.New(),
		now:         now,
		stopCh:      make(chan struct{}),
		logger:      logger,
	}
}

// IsEnabled returns whether the cache is enabled.
func (m *Manager) IsEnabled() bool {
	return !m.opts.Disabled
}

// Get returns a live entry for the key. Expired entries are removed and counted
// as both a miss and a delete.
func (m *Manager) Get(key CacheKey) (*CacheEntry, bool) {
	if !m.IsEnabled() {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[key]
	if !exists {
		m.misses++
		return nil, false
	}

	if entry.IsExpired(m.now()) {
		m.removeEntry(entry)
		m.deletes++
		m.misses++
		m.debug("Cache entry expired", key)
		return nil, false
	}

	m.accessOrder.MoveToFront(entry.listElement)
	m.hits++
	m.debug("Cache hit", key)
	return entry.CacheEntry, true
}

// Set stores the payload under the key, replacing any previous entry. Internal
// failures are logged and never reach the caller.
func (m *Manager) Set(key CacheKey, data []byte, opts SetOptions) {
	if !m.IsEnabled() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Recovered from cache write failure", log.String("key", key.ToString()),
				log.Any("panic", r))
		}
	}()

	entry := m.buildEntry(data, opts)

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, exists := m.entries[key]; exists {
		m.removeEntry(existing)
	}

	stored := &storedEntry{CacheEntry: entry, key: key}
	stored.listElement = m.accessOrder.PushFront(key)
	m.entries[key] = stored
	m.totalSize += int64(entry.Size)
	m.sets++
	if entry.Compressed {
		m.compressionSavings += int64(len(data) - entry.Size)
	}

	if m.opts.MaxEntries > 0 && len(m.entries) > m.opts.MaxEntries {
		m.evictOldest()
	}
	m.debug("Cache entry set", key)
}

// buildEntry prepares an entry outside the lock. Compression is kept only when it shrinks the payload.
func (m *Manager) buildEntry(data []byte, opts SetOptions) *CacheEntry {
	now := m.now()

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = m.opts.DefaultTTL
	}

	stored := data
	compressed := false
	if m.opts.EnableCompression && len(data) > m.opts.CompressionThreshold {
		gz, err := compress(data)
		switch {
		case err != nil:
			m.logger.Warn("Failed to compress cache entry, storing raw payload", log.Error(err))
		case len(gz) < len(data):
			stored = gz
			compressed = true
		}
	}

	headers := make(map[string]string, len(opts.Headers))
	for name, value := range opts.Headers {
		headers[name] = value
	}

	entry := &CacheEntry{
		Data:       stored,
		Timestamp:  now,
		TTL:        ttl,
		Compressed: compressed,
		Size:       len(stored),
		Headers:    headers,
		StatusCode: opts.StatusCode,
		Path:       opts.Path,
	}
	if m.opts.EnableETag {
		entry.ETag = generateETag(data)
	}
	if m.opts.EnableLastModified {
		entry.LastModified = now.UTC().Format(http.TimeFormat)
	}
	return entry
}

// Delete removes the entry for the key and reports whether one existed.
func (m *Manager) Delete(key CacheKey) bool {
	if !m.IsEnabled() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[key]
	if !exists {
		return false
	}
	m.removeEntry(entry)
	m.deletes++
	return true
}

// InvalidatePrefix removes every entry stored for a request path under the prefix.
func (m *Manager) InvalidatePrefix(pathPrefix string) int {
	if !m.IsEnabled() || pathPrefix == "" {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for _, entry := range m.entries {
		if strings.HasPrefix(entry.Path, pathPrefix) {
			m.removeEntry(entry)
			m.deletes++
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("Invalidated cache entries", log.String("prefix", pathPrefix), log.Int("count", removed))
	}
	return removed
}

// Clear removes all entries from the cache.
func (m *Manager) Clear() {
	if !m.IsEnabled() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.deletes += int64(len(m.entries))
	m.entries = make(map[CacheKey]*storedEntry)
	m.accessOrder.Init()
	m.totalSize = 0
	m.logger.Debug("Cleared all entries in the cache")
}

// RecordResponseTime adds a served request duration to the running average.
func (m *Manager) RecordResponseTime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responseTimeTotal += d
	m.responseTimeCount++
}

// GetStats returns cache statistics.
func (m *Manager) GetStats() CacheStats {
	if !m.IsEnabled() {
		return CacheStats{Enabled: false}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stats := CacheStats{
		Enabled:            true,
		Hits:               m.hits,
		Misses:             m.misses,
		Sets:               m.sets,
		Deletes:            m.deletes,
		Evictions:          m.evictions,
		CompressionSavings: m.compressionSavings,
		TotalSize:          m.totalSize,
		EntryCount:         len(m.entries),
	}

	if lookups := m.hits + m.misses; lookups > 0 {
		stats.HitRate = float64(m.hits) / float64(lookups)
		stats.MissRate = float64(m.misses) / float64(lookups)
	}
	if m.responseTimeCount > 0 {
		avg := m.responseTimeTotal / time.Duration(m.responseTimeCount)
		stats.AverageResponseTime = float64(avg) / float64(time.Millisecond)
	}
	return stats
}

// CleanupExpired removes all expired entries and returns how many were removed.
func (m *Manager) CleanupExpired() int {
	if !m.IsEnabled() {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for _, entry := range m.entries {
		if entry.IsExpired(now) {
			m.removeEntry(entry)
			m.deletes++
			removed++
		}
	}

	if removed > 0 {
		m.logger.Debug("Removed expired cache entries", log.Int("count", removed))
	}
	return removed
}

// Destroy stops the background sweep and drops all entries. It is safe to call more than once.
func (m *Manager) Destroy() {
	m.stopOnce.Do(func() {
		close(m.stopCh)

		m.mu.Lock()
		defer m.mu.Unlock()
		m.entries = make(map[CacheKey]*storedEntry)
		m.accessOrder.Init()
		m.totalSize = 0
		m.logger.Debug("Response cache destroyed")
	})
}

// startCleanupRoutine sweeps expired entries on a fixed interval until the manager is destroyed.
func (m *Manager) startCleanupRoutine() {
	ticker := time.NewTicker(m.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupExpired()
		case <-m.stopCh:
			return
		}
	}
}

// evictOldest removes the least recently used entry. Callers hold the lock.
func (m *Manager) evictOldest() {
	oldest := m.accessOrder.Back()
	if oldest == nil {
		return
	}
	key := oldest.Value.(CacheKey)
	if entry, exists := m.entries[key]; exists {
		m.removeEntry(entry)
		m.evictions++
		m.debug("Cache entry evicted", key)
	}
}

// removeEntry drops an entry from the map and the access order. Callers hold the lock.
func (m *Manager) removeEntry(entry *storedEntry) {
	delete(m.entries, entry.key)
	m.accessOrder.Remove(entry.listElement)
	m.totalSize -= int64(entry.Size)
}

func (m *Manager) debug(msg string, key CacheKey) {
	if m.opts.Debug {
		m.logger.Debug(msg, log.String("key", key.ToString()))
	}
}
