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

package cache

import (
	"time"
)

// CacheKey represents a key for the response cache.
type CacheKey struct {
	Key string
}

// ToString returns the string representation of the CacheKey.
func (key CacheKey) ToString() string {
	return key.Key
}

// CacheEntry represents one cached response. Entries are never modified after they are stored.
type CacheEntry struct {
	Data         []byte
	ETag         string
	LastModified string
	Timestamp    time.Time
	TTL          time.Duration
	Compressed   bool
	// Size is the stored length of Data, whichever form is kept.
	Size       int
	Headers    map[string]string
	StatusCode int
	Path       string
}

// IsExpired reports whether the entry is past its TTL at the given instant.
func (e *CacheEntry) IsExpired(now time.Time) bool {
	return now.Sub(e.Timestamp) > e.TTL
}

// SetOptions carries the optional per entry settings for Set.
type SetOptions struct {
	TTL        time.Duration
	Headers    map[string]string
	StatusCode int
	Path       string
}

// CacheStats represents cache statistics.
type CacheStats struct {
	Enabled             bool    `json:"enabled"`
	Hits                int64   `json:"hits"`
	Misses              int64   `json:"misses"`
	Sets                int64   `json:"sets"`
	Deletes             int64   `json:"deletes"`
	Evictions           int64   `json:"evictions"`
	CompressionSavings  int64   `json:"compressionSavings"`
	TotalSize           int64   `json:"totalSize"`
	HitRate             float64 `json:"hitRate"`
	MissRate            float64 `json:"missRate"`
	EntryCount          int     `json:"entryCount"`
	AverageResponseTime float64 `json:"averageResponseTime"`
}
