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

import "sync"

// historyRing keeps the most recent processed events, evicting the oldest first.
type historyRing struct {
	mu   sync.RWMutex
	buf  []ProcessedEvent
	next int
	size int
}

func newHistoryRing(limit int) *historyRing {
	return &historyRing{buf: make([]ProcessedEvent, limit)}
}

func (h *historyRing) add(event ProcessedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf[h.next] = event
	h.next = (h.next + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// last returns up to n events, oldest first.
func (h *historyRing) last(n int) []ProcessedEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > h.size {
		n = h.size
	}
	events := make([]ProcessedEvent, n)
	start := (h.next - n + len(h.buf)) % len(h.buf)
	for i := range n {
		events[i] = h.buf[(start+i)%len(h.buf)]
	}
	return events
}

func (h *historyRing) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

func (h *historyRing) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf = make([]ProcessedEvent, len(h.buf))
	h.next = 0
	h.size = 0
}
