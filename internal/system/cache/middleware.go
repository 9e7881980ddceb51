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
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	serverconst "github.com/procurehub/procurement-server/internal/system/constants"
	"github.com/procurehub/procurement-server/internal/system/log"
)

// Middleware serves cacheable requests from the cache and stores eligible responses.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.IsEnabled() || m.ShouldSkipRequest(r) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		key := GenerateCacheKey(r, m.opts.VaryHeaders)

		if entry, ok := m.Get(key); ok && m.serveFromCache(w, r, key, entry) {
			m.RecordResponseTime(time.Since(start))
			return
		}

		rec := newResponseRecorder(w, cacheStatusMiss)
		next.ServeHTTP(rec, r)
		m.RecordResponseTime(time.Since(start))

		if !m.ShouldCache(r.Method, r.URL.Path, rec.StatusCode(), rec.Header()) {
			return
		}
		m.Set(key, rec.Body(), SetOptions{
			Headers:    capturedHeaders(rec.Header()),
			StatusCode: rec.StatusCode(),
			Path:       r.URL.Path,
		})
	})
}

// serveFromCache writes a cached response. It returns false when the entry
// cannot be served and the request must fall through to the handler.
func (m *Manager) serveFromCache(w http.ResponseWriter, r *http.Request, key CacheKey, entry *CacheEntry) bool {
	header := w.Header()

	if m.isNotModified(r, entry) {
		m.setValidators(header, entry)
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	body := entry.Data
	sendEncoded := false
	if entry.Compressed {
		if acceptsGzip(r) {
			sendEncoded = true
		} else {
			raw, err := decompress(entry.Data)
			if err != nil {
				m.logger.Warn("Failed to decompress cached entry, serving from handler",
					log.String("key", key.ToString()), log.Error(err))
				m.Delete(key)
				return false
			}
			body = raw
		}
	}

	for name, value := range entry.Headers {
		header.Set(name, value)
	}
	m.setValidators(header, entry)
	header.Set(serverconst.XCacheHeaderName, cacheStatusHit)
	if sendEncoded {
		header.Set(serverconst.ContentEncodingHeaderName, "gzip")
		header.Add(serverconst.VaryHeaderName, serverconst.AcceptEncodingHeaderName)
	}
	header.Set(serverconst.ContentLengthHeaderName, strconv.Itoa(len(body)))

	status := entry.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if r.Method != http.MethodHead {
		if _, err := w.Write(body); err != nil {
			m.logger.Debug("Failed to write cached response", log.Error(err))
		}
	}
	return true
}

func (m *Manager) setValidators(header http.Header, entry *CacheEntry) {
	if entry.ETag != "" {
		header.Set(serverconst.ETagHeaderName, entry.ETag)
	}
	if entry.LastModified != "" {
		header.Set(serverconst.LastModifiedHeaderName, entry.LastModified)
	}
	header.Set(serverconst.CacheControlHeaderName,
		fmt.Sprintf("public, max-age=%d", int64(m.opts.MaxAge/time.Second)))
}

// isNotModified evaluates If-None-Match against the entity tag, then If-Modified-Since
// against the write time at second precision.
func (m *Manager) isNotModified(r *http.Request, entry *CacheEntry) bool {
	if inm := r.Header.Get(serverconst.IfNoneMatchHeaderName); inm != "" && entry.ETag != "" {
		if etagMatches(inm, entry.ETag) {
			return true
		}
	}

	ims := r.Header.Get(serverconst.IfModifiedSinceHeaderName)
	if ims == "" || entry.LastModified == "" {
		return false
	}
	since, err := http.ParseTime(ims)
	if err != nil {
		return false
	}
	modified, err := http.ParseTime(entry.LastModified)
	if err != nil {
		return false
	}
	return !since.Before(modified)
}

// etagMatches applies weak comparison over a list of entity tags.
func etagMatches(header, etag string) bool {
	target := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == target {
			return true
		}
	}
	return false
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get(serverconst.AcceptEncodingHeaderName), ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.TrimSpace(coding)
		if !strings.EqualFold(coding, "gzip") && coding != "*" {
			continue
		}
		if q, found := strings.CutPrefix(strings.TrimSpace(params), "q="); found {
			if weight, err := strconv.ParseFloat(q, 64); err == nil && weight == 0 {
				continue
			}
		}
		return true
	}
	return false
}

func capturedHeaders(header http.Header) map[string]string {
	captured := make(map[string]string, len(preservedHeaders))
	for _, name := range preservedHeaders {
		if value := header.Get(name); value != "" {
			captured[name] = value
		}
	}
	return captured
}
